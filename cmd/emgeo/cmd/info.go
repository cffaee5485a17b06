package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenEMTools/emgeo/pkg/geometry"
	"github.com/OpenEMTools/emgeo/pkg/ingest"
)

var infoCmd = &cobra.Command{
	Use:   "info <layout_file>",
	Short: "Show extracted geometry summary",
	Long: `Parses a layout file and prints the canonical geometry it yields:
conductor counts per kind, ports, substrate stack and bounding box.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

var portsCmd = &cobra.Command{
	Use:   "ports <layout_file>",
	Short: "List excitation ports",
	Args:  cobra.ExactArgs(1),
	RunE:  runPorts,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(portsCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	g, err := ingest.LoadWithLogger(args[0], logger)
	if err != nil {
		return fmt.Errorf("error parsing layout: %w", err)
	}

	counts := map[geometry.Kind]int{}
	for _, c := range g.Conductors {
		counts[c.Kind()]++
	}

	fmt.Printf("Format: %s\n", g.SourceFormat)
	fmt.Printf("Conductors: %d\n", len(g.Conductors))
	fmt.Printf("  Traces:        %d\n", counts[geometry.KindTrace])
	fmt.Printf("  Coupled lines: %d\n", counts[geometry.KindCoupledLine])
	fmt.Printf("  Vias:          %d\n", counts[geometry.KindVia])
	fmt.Printf("  Polygons:      %d\n", counts[geometry.KindPolygon])
	fmt.Printf("Ports: %d\n", len(g.Ports))
	fmt.Printf("Substrate: er=%.2f h=%.3f mm t=%.3f mm tand=%.4f\n",
		g.Substrate.Er, g.Substrate.Height, g.Substrate.Thickness, g.Substrate.TanD)
	fmt.Printf("Bounds: %.2f x %.2f mm, center (%.2f, %.2f)\n",
		g.Bounds.Width(), g.Bounds.Height(), g.Bounds.Center().X, g.Bounds.Center().Y)

	if len(g.Warnings) > 0 {
		fmt.Printf("\nWarnings (%d):\n", len(g.Warnings))
		for _, w := range g.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	return nil
}

func runPorts(cmd *cobra.Command, args []string) error {
	g, err := ingest.LoadWithLogger(args[0], logger)
	if err != nil {
		return fmt.Errorf("error parsing layout: %w", err)
	}

	if len(g.Ports) == 0 {
		fmt.Println("No ports found")
		return nil
	}

	fmt.Printf("%-6s %-16s %-10s %10s %12s\n", "Num", "Name", "Type", "Z0 (ohm)", "Position")
	for _, p := range g.Ports {
		fmt.Printf("%-6d %-16s %-10s %10.1f (%.2f, %.2f)\n",
			p.Number, p.Name, p.Type, p.Impedance, p.Position.X, p.Position.Y)
	}
	return nil
}
