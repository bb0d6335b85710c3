package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/deploymenttheory/go-a2fs/internal/services"
	"github.com/deploymenttheory/go-a2fs/pkg/app"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info [image-path]",
	Short: "Show what an image holds and how it was detected",
	Long: `Show the detected filesystem, sector order, container and volume details
of a disk image.

Examples:
  # Describe an image
  a2fs info GSOS.SYSTEM.2mg

  # Machine readable output
  a2fs info master.dsk -o json`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(imagePath string) error {
	vol, _, err := openVolume(imagePath)
	if err != nil {
		return err
	}
	info, err := vol.Info()
	if err != nil {
		return app.ClassifyError("failed to describe volume", err)
	}
	return appCtx.WriteOutput(info, func(w io.Writer) error {
		return formatInfoTable(w, info)
	})
}

func formatInfoTable(out io.Writer, info *services.VolumeInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Volume:\t%s\n", info.Name)
	fmt.Fprintf(w, "Filesystem:\t%s\n", info.Kind)
	fmt.Fprintf(w, "Detected by:\t%s (confident: %t)\n", info.Detection.Method, info.Detection.Confident)
	fmt.Fprintf(w, "Sector order fixed:\t%t\n", info.Detection.NeedsOrderFix)
	if info.Compression != "" {
		fmt.Fprintf(w, "Compression:\t%s\n", info.Compression)
	}
	if c := info.Container; c != nil {
		fmt.Fprintf(w, "2IMG creator:\t%s\n", c.Creator)
		fmt.Fprintf(w, "2IMG format:\t%s\n", c.ImageFormat)
		fmt.Fprintf(w, "2IMG locked:\t%t\n", c.Locked())
		if c.Comment != "" {
			fmt.Fprintf(w, "2IMG comment:\t%s\n", c.Comment)
		}
	}
	if info.VolumeNumber != nil {
		fmt.Fprintf(w, "Volume number:\t%d\n", *info.VolumeNumber)
	}
	fmt.Fprintf(w, "Image size:\t%d bytes (%d blocks)\n", info.ImageSize, info.TotalBlocks)
	fmt.Fprintf(w, "Fingerprint:\t%s\n", info.Fingerprint)
	fmt.Fprintf(w, "Root entries:\t%d\n", info.RootEntries)
	if !info.Created.IsZero() {
		fmt.Fprintf(w, "Created:\t%s\n", info.Created.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
