package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/ruler"
	"github.com/matzehuels/sitecanvas/pkg/viewport"
)

// marksCommand creates the marks command.
func (c *CLI) marksCommand() *cobra.Command {
	var (
		axisName string
		zoom     float64
		panX     float64
		panY     float64
		majors   bool
	)

	cmd := &cobra.Command{
		Use:   "marks",
		Short: "Print the ruler ticks for a viewport",
		Long: `Print the ticks a ruler shows for the configured viewport at the given pan
and zoom, with their canvas values and screen positions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			axis, err := geom.ParseAxis(axisName)
			if err != nil {
				return err
			}
			ccfg := cfg.Canvas()
			v := viewport.New(ccfg.Bounds, viewport.WithZoomLimits(ccfg.MinZoom, ccfg.MaxZoom))
			if !v.SetZoom(zoom) {
				return fmt.Errorf("invalid zoom %v", zoom)
			}
			v.PanBy(panX, panY)

			ticks := ruler.Ticks(axis, v, ccfg.Steps)
			if majors {
				ticks = majorTicks(ticks)
			}
			lo, hi, _ := ruler.Range(axis, v)
			printInfo("%s ruler covers %s to %s", axis, StyleNumber.Render(formatValue(lo)), StyleNumber.Render(formatValue(hi)))
			fmt.Println(ticksTable(ticks))
			return nil
		},
	}

	cmd.Flags().StringVar(&axisName, "axis", "horizontal", "ruler axis: horizontal or vertical")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "zoom factor")
	cmd.Flags().Float64Var(&panX, "pan-x", 0, "horizontal pan in pixels")
	cmd.Flags().Float64Var(&panY, "pan-y", 0, "vertical pan in pixels")
	cmd.Flags().BoolVar(&majors, "major", false, "only list labelled major ticks")

	return cmd
}

func majorTicks(ticks []ruler.Tick) []ruler.Tick {
	out := ticks[:0:0]
	for _, t := range ticks {
		if t.Kind == ruler.Major {
			out = append(out, t)
		}
	}
	return out
}

func formatValue(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func ticksTable(ticks []ruler.Tick) string {
	rows := make([][]string, 0, len(ticks))
	for _, t := range ticks {
		rows = append(rows, []string{formatValue(t.Value), t.Kind.String(), fmt.Sprintf("%.1f", t.Pos), t.Label})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Value", "Kind", "Pos", "Label").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case row < len(ticks) && ticks[row].Kind == ruler.Major:
				return lipgloss.NewStyle().Foreground(colorCyan)
			default:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
		}).
		Render()
}
