package cmd

import (
	"fmt"
	"os"

	"github.com/deploymenttheory/go-a2fs/pkg/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string
	configFile   string

	appCtx *app.Context
)

var rootCmd = &cobra.Command{
	Use:   "a2fs",
	Short: "Read-only explorer and extractor for Apple II disk images",
	Long: `a2fs is a read-only command-line tool for listing and extracting files
from Apple II ProDOS and DOS 3.3 disk images.

Reads .po, .do, .dsk, .hdv and .2mg images, optionally gzip, xz or bzip2
compressed. The filesystem and sector order are detected automatically.

Commands:
  info        Show what an image holds and how it was detected
  list        List the catalog of a volume
  extract     Extract files, directories, or whole volumes`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		appCtx = app.NewContext()
		appCtx.OutputFormat = outputFormat
		appCtx.Verbose = verbose
		appCtx.Quiet = quiet
		appCtx.Stdout = cmd.OutOrStdout()
		appCtx.Stderr = cmd.ErrOrStderr()
		return appCtx.Validate()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(app.ExitCodeFor(err))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", app.OutputTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: a2fs-config.yaml in ., ./config, $HOME/.a2fs or /etc/a2fs)")

	// Name handling applies to listing and extraction alike
	rootCmd.PersistentFlags().Bool("casefold-upper", false, "keep ProDOS names upper case, ignoring GS/OS case masks")
	rootCmd.PersistentFlags().Bool("prodos-names", false, "adapt DOS 3.3 names to ProDOS rules and strip DOS 3.3 file headers")
	cobra.CheckErr(viper.BindPFlag("casefold_upper", rootCmd.PersistentFlags().Lookup("casefold-upper")))
	cobra.CheckErr(viper.BindPFlag("prodos_names", rootCmd.PersistentFlags().Lookup("prodos-names")))
}

// reportError writes err to stderr. Usage errors raised before the
// application context exists go straight to the command's error stream.
func reportError(err error) {
	if appCtx == nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return
	}
	appCtx.Error(err.Error())
}
