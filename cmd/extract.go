package cmd

import (
	"fmt"
	"io"

	"github.com/deploymenttheory/go-a2fs/internal/export"
	"github.com/deploymenttheory/go-a2fs/pkg/app"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var extractDest string

var extractCmd = &cobra.Command{
	Use:   "extract [image-path] [path]",
	Short: "Extract files, directories, or whole volumes",
	Long: `Extract files from a ProDOS or DOS 3.3 image to the host.

Without a path the whole volume is written into a directory named after
it. Resource forks and file types are kept according to --fork-mode:

  none         data forks only
  appledouble  netatalk style .AppleDouble/NAME files with type, dates
               and resource fork
  extended     NAME#ttaaaa files, resource forks in NAME#ttaaaar

Examples:
  # Extract a whole volume
  a2fs extract system.po --dest ./out

  # Extract one file, keeping its resource fork
  a2fs extract gsos.2mg /SYSTEM.DISK/FINDER --dest ./out --fork-mode extended

  # Extract a DOS 3.3 disk for use on ProDOS
  a2fs extract master.dsk --dest ./out --prodos-names`,

	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		return runExtract(args[0], path)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractDest, "dest", "d", ".", "destination directory")
	extractCmd.Flags().String("fork-mode", "none", "resource fork handling (none, appledouble, extended)")
	cobra.CheckErr(viper.BindPFlag("fork_mode", extractCmd.Flags().Lookup("fork-mode")))
}

func runExtract(imagePath, path string) error {
	vol, cfg, err := openVolume(imagePath)
	if err != nil {
		return err
	}

	x, err := export.NewExporter(vol, export.Options{Dest: extractDest, Mode: cfg.Mode()}, appCtx.Logger())
	if err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid extraction options", err)
	}
	res, err := x.Extract(path)
	if err != nil {
		return app.ClassifyError("failed to extract from "+imagePath, err)
	}
	hits, misses := vol.CacheStats()
	appCtx.Logger().V(1).Info("file cache", "hits", hits, "misses", misses)

	for _, f := range res.Failures {
		appCtx.Error(fmt.Sprintf("%s: %s", f.Path, f.Error))
	}
	if err := appCtx.WriteOutput(res, func(w io.Writer) error {
		return formatExtractTable(w, res)
	}); err != nil {
		return err
	}
	if len(res.Failures) > 0 {
		return app.NewError(app.ErrCodeMalformedImage, fmt.Sprintf("%d entries could not be extracted", len(res.Failures)), nil)
	}
	return nil
}

func formatExtractTable(w io.Writer, res *export.Result) error {
	for _, f := range res.Files {
		fmt.Fprintln(w, f)
	}
	_, err := fmt.Fprintf(w, "\nExtracted %d files into %s\n", len(res.Files), res.Root)
	return err
}
