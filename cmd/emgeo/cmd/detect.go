package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenEMTools/emgeo/pkg/detect"
)

var detectCmd = &cobra.Command{
	Use:   "detect <layout_file>",
	Short: "Classify a layout file's format",
	Long: `Classifies a file into one of the supported layout formats by
extension and content signature. A signature mismatch on a recognized
extension is reported but not fatal.`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	result, err := detect.File(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", args[0], result.Format)
	if result.Warning != "" {
		fmt.Printf("  warning: %s\n", result.Warning)
	}
	return nil
}
