package cli

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitecanvas/pkg/viewmode"
)

// stepsCommand creates the steps command.
func (c *CLI) stepsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "steps",
		Short: "Show the editor step graph",
	}

	cmd.AddCommand(c.stepsGraphCommand())
	cmd.AddCommand(c.stepsBrowseCommand())

	return cmd
}

// stepsGraphCommand creates the "steps graph" subcommand.
func (c *CLI) stepsGraphCommand() *cobra.Command {
	var (
		active string
		output string
		dot    bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Render the step graph as SVG or DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := viewmode.Parse(active)
			if err != nil {
				return err
			}
			data := []byte(viewmode.ToDOT(mode))
			if !dot {
				data, err = viewmode.RenderSVG(cmd.Context(), string(data))
				if err != nil {
					return err
				}
			}
			if output == "" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&active, "active", "iterate", "step to highlight")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&dot, "dot", false, "emit Graphviz DOT instead of SVG")

	return cmd
}

// stepsBrowseCommand creates the "steps browse" subcommand.
func (c *CLI) stepsBrowseCommand() *cobra.Command {
	var fragment string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Walk the editor steps interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := tea.NewProgram(NewStepsModel(fragment), tea.WithContext(cmd.Context()))
			final, err := p.Run()
			if err != nil {
				return err
			}
			if m, ok := final.(StepsModel); ok {
				printInfo("Left the editor in %s", StyleHighlight.Render(m.Mode().String()))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fragment, "fragment", "", "initial URL fragment, e.g. #preview")

	return cmd
}
