package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sitecanvas/pkg/canvas"
	"github.com/matzehuels/sitecanvas/pkg/geom"
	"github.com/matzehuels/sitecanvas/pkg/pointer"
	"github.com/matzehuels/sitecanvas/pkg/render"
	"github.com/matzehuels/sitecanvas/pkg/tool"
)

// Script is a recorded canvas interaction:
//
//	width = 800
//	height = 600
//
//	[[event]]
//	action = "tool"
//	tool = "note"
//
//	[[event]]
//	action = "pointer"
//	kind = "down"
//	x = 100
//	y = 100
type Script struct {
	Width  float64       `toml:"width"`
	Height float64       `toml:"height"`
	Events []ScriptEvent `toml:"event"`
}

// ScriptEvent is one step of a script. Action is one of tool, pointer,
// ruler, guide, remove-guide, wheel, reset, resize or note.
type ScriptEvent struct {
	Action string  `toml:"action"`
	Tool   string  `toml:"tool"`
	Kind   string  `toml:"kind"`
	X      float64 `toml:"x"`
	Y      float64 `toml:"y"`
	Alt    bool    `toml:"alt"`
	Axis   string  `toml:"axis"`
	Guide  string  `toml:"guide"`
	Delta  float64 `toml:"delta"`
	Note   string  `toml:"note"`
	Text   string  `toml:"text"`

	// Unmeasured sends the pointer event without viewport bounds.
	Unmeasured bool `toml:"unmeasured"`
}

func parseScript(data string) (Script, error) {
	var sc Script
	md, err := toml.Decode(data, &sc)
	if err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	if keys := md.Undecoded(); len(keys) > 0 {
		return Script{}, fmt.Errorf("parse script: unknown key %q", keys[0].String())
	}
	return sc, nil
}

// Run applies every event to s in order.
func (sc Script) Run(s *canvas.Session) error {
	for i, ev := range sc.Events {
		if err := ev.apply(s); err != nil {
			return fmt.Errorf("event %d (%s): %w", i+1, ev.Action, err)
		}
	}
	return nil
}

func (ev ScriptEvent) pointer(s *canvas.Session, kind pointer.Kind) pointer.Event {
	pe := pointer.Event{Kind: kind, Client: geom.Pt(ev.X, ev.Y), Alt: ev.Alt}
	if !ev.Unmeasured {
		b := s.Viewport().Bounds
		pe.Bounds = &b
	}
	return pe
}

func (ev ScriptEvent) apply(s *canvas.Session) error {
	switch ev.Action {
	case "tool":
		t, err := tool.Parse(ev.Tool)
		if err != nil {
			return err
		}
		s.SelectTool(t)
	case "pointer":
		kind, err := pointer.ParseKind(ev.Kind)
		if err != nil {
			return err
		}
		s.HandlePointer(ev.pointer(s, kind))
	case "ruler":
		axis, err := geom.ParseAxis(ev.Axis)
		if err != nil {
			return err
		}
		s.RulerDown(axis, ev.pointer(s, pointer.Down))
	case "guide":
		s.GuideDown(ev.Guide)
	case "remove-guide":
		s.GuideDoubleClick(ev.Guide)
	case "wheel":
		s.Wheel(ev.pointer(s, pointer.Move), ev.Delta)
	case "reset":
		s.ResetView()
	case "resize":
		s.Resize(geom.R(0, 0, ev.X, ev.Y))
	case "note":
		s.Overlay().SetNote(ev.Note, ev.Text)
	default:
		return fmt.Errorf("unknown action %q", ev.Action)
	}
	return nil
}

// replayCommand creates the replay command.
func (c *CLI) replayCommand() *cobra.Command {
	var (
		output string
		state  string
		rulers bool
	)

	cmd := &cobra.Command{
		Use:   "replay <script.toml>",
		Short: "Replay scripted pointer events on a canvas",
		Long: `Replay scripted pointer events on a fresh iteration canvas and render the
resulting overlay.

The overlay format follows the output extension: .svg or .png.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read script: %w", err)
			}
			sc, err := parseScript(string(data))
			if err != nil {
				return err
			}

			ccfg := cfg.Canvas()
			if sc.Width > 0 && sc.Height > 0 {
				ccfg.Bounds = geom.R(0, 0, sc.Width, sc.Height)
			}
			ccfg.Logger = c.Logger
			s := canvas.New(ccfg)
			defer s.Close()

			prog := newProgress(c.Logger)
			if err := sc.Run(s); err != nil {
				return err
			}
			prog.done("Replayed " + strconv.Itoa(len(sc.Events)) + " events")
			printSummary(s)

			if output != "" {
				if err := writeOverlay(s, output, rulers); err != nil {
					return err
				}
				printFile(output)
			}
			if state != "" {
				b, err := s.MarshalState()
				if err != nil {
					return err
				}
				if err := os.WriteFile(state, b, 0o644); err != nil {
					return fmt.Errorf("write state: %w", err)
				}
				printFile(state)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the overlay to this .svg or .png file")
	cmd.Flags().StringVar(&state, "state", "", "write the final canvas state as JSON")
	cmd.Flags().BoolVar(&rulers, "rulers", true, "draw rulers on the overlay")

	return cmd
}

func writeOverlay(s *canvas.Session, path string, rulers bool) error {
	opts := s.RenderOptions(rulers)
	var (
		data []byte
		err  error
	)
	switch ext := filepath.Ext(path); ext {
	case ".svg":
		data = render.SVG(s.Scene(), opts...)
	case ".png":
		data, err = render.PNG(s.Scene(), opts...)
	default:
		return fmt.Errorf("unsupported overlay format %q (want .svg or .png)", ext)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printSummary(s *canvas.Session) {
	v := s.Viewport()
	printKeyValue("Tool", s.Tool().String())
	printKeyValue("View", fmt.Sprintf("pan %.0f,%.0f  zoom %.2f", v.Pan.X, v.Pan.Y, v.Zoom))
	printKeyValue("Guides", strconv.Itoa(s.Guides().Len()))
	printKeyValue("Annotations", strconv.Itoa(len(s.Overlay().Annotations())))
	printKeyValue("Strokes", strconv.Itoa(len(s.Overlay().Strokes())))
}
