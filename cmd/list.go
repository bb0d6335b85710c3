package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/deploymenttheory/go-a2fs/internal/services"
	"github.com/deploymenttheory/go-a2fs/pkg/app"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [image-path] [path]",
	Short: "List the catalog of a volume",
	Long: `List the files of a ProDOS or DOS 3.3 volume, descending into
subdirectories. Extended files carrying a resource fork are marked with +.

ProDOS paths start with / or : and name the volume first. DOS 3.3 paths
are a single file name.

Examples:
  # List a whole volume
  a2fs list system.po

  # List one ProDOS directory
  a2fs list system.po /SYSTEM/SYSTEM.SETUP

  # List a DOS 3.3 disk with ProDOS-style names
  a2fs list master.dsk --prodos-names`,

	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		return runList(args[0], path)
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(imagePath, path string) error {
	vol, _, err := openVolume(imagePath)
	if err != nil {
		return err
	}
	cat, err := vol.Catalog(path)
	if err != nil {
		return app.ClassifyError("failed to list "+imagePath, err)
	}
	for _, e := range cat.Errors {
		appCtx.Error(fmt.Sprintf("%s: %s", e.Path, e.Error))
	}
	return appCtx.WriteOutput(cat, func(w io.Writer) error {
		return formatCatalogTable(w, cat)
	})
}

func formatCatalogTable(out io.Writer, cat *services.Catalog) error {
	if len(cat.Entries) == 0 {
		fmt.Fprintf(out, "%s (%s) holds no files.\n", cat.Volume, cat.Kind)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "PATH\tTYPE\tAUX\tSIZE\tMODIFIED\tCREATED\n")
	fmt.Fprintf(w, "----\t----\t---\t----\t--------\t-------\n")

	files := 0
	for _, e := range cat.Entries {
		name := e.Path
		if e.Forked {
			name += "+"
		}
		if e.Locked {
			name = "*" + name
		}
		size := fmt.Sprintf("%d", e.Length)
		switch {
		case e.Directory:
			size = "<DIR>"
		case e.Forked:
			size = fmt.Sprintf("%d+%d", e.Length, e.ResourceLength)
		}
		if !e.Directory {
			files++
		}
		fmt.Fprintf(w, "%s\t%s\t$%04X\t%s\t%s\t%s\n",
			name, e.TypeMnemonic, e.AuxType, size, formatDate(e.Modified), formatDate(e.Created))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nVolume: %s (%s), %d files\n", cat.Volume, cat.Kind, files)
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "<NO DATE>"
	}
	return t.Format("02-Jan-06 15:04")
}
