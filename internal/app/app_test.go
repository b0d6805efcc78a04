package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dshills/hoverlay/internal/host"
	"github.com/dshills/hoverlay/internal/host/hosttest"
	"github.com/dshills/hoverlay/internal/overlay"
	"github.com/dshills/hoverlay/internal/provider"
)

func newApp(t *testing.T, cfg Config) (*App, *hosttest.Host, *hosttest.Editor) {
	t.Helper()

	ed := hosttest.NewEditor("ed-1", "source.go", "concat(str1, str2)")
	h := hosttest.NewHost()
	h.SetActiveEditor(ed)

	a, err := New(h, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	a.Start()
	t.Cleanup(func() { _ = a.Close() })
	return a, h, ed
}

func TestCommands(t *testing.T) {
	a, _, ed := newApp(t, DefaultConfig())

	a.Engine().Hovers().Register(provider.HoverFunc{
		Meta: provider.Info{Name: "test", Priority: 1},
		Fn: func(_ context.Context, _ host.Editor, pos host.Position) (*provider.HoverResult, error) {
			return &provider.HoverResult{Kind: provider.Markdown, Value: "docs"}, nil
		},
	})
	ed.MoveCursor(host.Position{Row: 0, Column: 2}, false)

	if err := a.Execute("toggle-hover"); err != nil {
		t.Fatalf("toggle-hover: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for a.Engine().Showing() != overlay.KindHover {
		if time.Now().After(deadline) {
			t.Fatal("toggle-hover never mounted")
		}
		time.Sleep(2 * time.Millisecond)
	}

	if err := a.Execute("dismiss-overlay"); err != nil {
		t.Fatalf("dismiss-overlay: %v", err)
	}
	if a.Engine().Showing() != "" {
		t.Error("dismiss left an overlay showing")
	}

	if err := a.Execute("no-such-command"); !errors.Is(err, ErrUnknownCommand) {
		t.Errorf("unknown command error = %v", err)
	}
}

func TestCommandsWithoutEditor(t *testing.T) {
	a, h, _ := newApp(t, DefaultConfig())
	h.SetActiveEditor(nil)

	if err := a.Execute("toggle-hover"); !errors.Is(err, overlay.ErrNoEditor) {
		t.Errorf("toggle-hover without editor = %v, want ErrNoEditor", err)
	}
}

func TestConfigFileApplied(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hoverlay.toml")
	if err := os.WriteFile(path, []byte("[hover]\nhoverTime = 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.ConfigPath = path
	a, _, _ := newApp(t, cfg)

	if got := a.Settings().Get().Hover.HoverTime; got != 42 {
		t.Errorf("hoverTime = %d, want 42 from the config file", got)
	}

	// Live reload through the watcher.
	if err := os.WriteFile(path, []byte("[hover]\nhoverTime = 77\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for a.Settings().Get().Hover.HoverTime != 77 {
		if time.Now().After(deadline) {
			t.Fatal("settings never reloaded from disk")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSessionIDs(t *testing.T) {
	a1, _, _ := newApp(t, DefaultConfig())
	a2, _, _ := newApp(t, DefaultConfig())

	if a1.SessionID() == "" || a1.SessionID() == a2.SessionID() {
		t.Errorf("session ids %q and %q should be distinct and non-empty", a1.SessionID(), a2.SessionID())
	}
}
