// Package main is a scripted demonstration of the overlay engine: it
// drives an in-memory editor through pointer rests, typing, and toggles,
// and prints each overlay the engine mounts.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dshills/hoverlay/internal/app"
	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/host/hosttest"
	"github.com/dshills/hoverlay/internal/overlay"
	"github.com/dshills/hoverlay/internal/provider"
	"github.com/dshills/hoverlay/internal/render"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
)

const buffer = `concat(str1, str2)
greet(name)`

func main() {
	os.Exit(run())
}

func run() int {
	cfg := app.DefaultConfig()
	var showVersion bool
	flag.StringVar(&cfg.ConfigPath, "config", "", "Path to a TOML settings file")
	flag.StringVar(&cfg.LogLevel, "log-level", "warn", "Minimum log level (debug|info|warn|error)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("hoverlay-demo", version)
		return 0
	}

	editor := hosttest.NewEditor("demo-editor", "source.go", buffer)
	h := hosttest.NewHost()
	h.SetActiveEditor(editor)

	cfg.Geometry = func(root *render.Element) render.Geometry {
		return &render.GridGeometry{CharWidth: editor.CharWidth, RowHeight: editor.LineHeight, Root: root}
	}

	application, err := app.New(h, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Close()

	registerDemoProviders(application.Engine())

	// Fast rest timers keep the script snappy.
	if err := application.Settings().Set("hover.hoverTime", 50); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	application.Start()
	runScript(application, editor)
	return 0
}

// registerDemoProviders wires one hover provider, one legacy datatip
// provider, and one signature provider over the demo buffer.
func registerDemoProviders(eng *overlay.Engine) {
	concatRange := host.Range{Start: host.Position{Row: 0, Column: 0}, End: host.Position{Row: 0, Column: 6}}

	eng.Hovers().Register(provider.HoverFunc{
		Meta: provider.Info{Name: "demo-hover", Priority: 1, GrammarScopes: []string{"source.go"}},
		Fn: func(_ context.Context, _ host.Editor, pos host.Position) (*provider.HoverResult, error) {
			if !concatRange.Contains(pos) {
				return nil, nil
			}
			rng := concatRange
			return &provider.HoverResult{
				Range: &rng,
				Kind:  provider.Markdown,
				Value: "```go\nfunc concat(str1, str2 string) string\n```\n\nJoins two strings.",
			}, nil
		},
	})

	greetRange := host.Range{Start: host.Position{Row: 1, Column: 0}, End: host.Position{Row: 1, Column: 5}}
	eng.Hovers().RegisterDatatip(provider.DatatipFunc{
		Meta: provider.Info{Name: "demo-datatip", Priority: 5},
		Fn: func(_ context.Context, _ host.Editor, pos host.Position) (*provider.Datatip, error) {
			if !greetRange.Contains(pos) {
				return nil, nil
			}
			rng := greetRange
			return &provider.Datatip{
				Range: &rng,
				Marked: []provider.MarkedString{
					{Snippet: true, Value: "func greet(name string)", Grammar: "source.go"},
					{Value: "Prints a greeting."},
				},
			}, nil
		},
	})

	eng.Signatures().Register(provider.SignatureFunc{
		Meta:       provider.Info{Name: "demo-signature", Priority: 1},
		Triggers:   "(,",
		Retriggers: ")",
		Fn: func(_ context.Context, _ host.Editor, _ host.Position, trig provider.TriggerContext) (*provider.SignatureResult, error) {
			if trig.Character == ")" {
				return &provider.SignatureResult{}, nil
			}
			return &provider.SignatureResult{
				Signatures: []provider.SignatureInfo{{
					Label: "concat(str1, str2)",
					Parameters: []provider.ParameterInfo{
						{Label: provider.OffsetLabel(7, 11), Documentation: "The first string."},
						{Label: provider.OffsetLabel(13, 17), Documentation: "The second string."},
					},
				}},
			}, nil
		},
	})
}

// runScript drives the editor and reports what the engine shows.
func runScript(application *app.App, editor *hosttest.Editor) {
	eng := application.Engine()
	view := editor.TestView()

	step := func(label string, act func()) {
		act()
		// Let rest timers and async provider queries settle.
		time.Sleep(250 * time.Millisecond)
		view.FireVisible()
		report(label, eng, view)
	}

	step("pointer rests on concat", func() {
		editor.MovePointer(editor.PointerAt(host.Position{Row: 0, Column: 2}))
	})
	step("pointer rests on empty space", func() {
		editor.MovePointer(host.PixelPoint{X: 400, Y: 10})
	})
	step("pointer rests on greet (legacy datatip)", func() {
		editor.MovePointer(editor.PointerAt(host.Position{Row: 1, Column: 2}))
	})
	step("typing ( after concat", func() {
		editor.MoveCursor(host.Position{Row: 0, Column: 18}, false)
		editor.Insert("(")
	})
	step("typing ) closes the argument list", func() {
		editor.Insert(")")
	})
	step("toggle hover at cursor", func() {
		editor.MoveCursor(host.Position{Row: 0, Column: 3}, false)
		if err := application.Execute("toggle-hover"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
	step("toggle hover again", func() {
		if err := application.Execute("toggle-hover"); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
}

func report(label string, eng *overlay.Engine, view *hosttest.View) {
	fmt.Printf("== %s\n", label)

	kind := eng.Showing()
	if kind == "" {
		fmt.Println("   (idle)")
		return
	}
	rng, _ := eng.ShowingRange()
	fmt.Printf("   showing %s over %d:%d-%d:%d\n", kind,
		rng.Start.Row, rng.Start.Column, rng.End.Row, rng.End.Column)

	for _, d := range view.LiveOverlays() {
		el, ok := d.Spec.Item.(*render.Element)
		if !ok {
			continue
		}
		fmt.Printf("   content: %q\n", el.PlainText())
		if code := el.FindCodeBlock(); code != nil {
			for _, c := range code.Children {
				if c.Class == "active-parameter-highlight" && c.Box != nil {
					fmt.Printf("   highlight: left=%.0f width=%.0f\n", c.Box.Left, c.Box.Width)
				}
			}
		}
	}
}
