package config

import (
	"errors"
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	d := Defaults()

	if d.Hover.ShowOnCursorMove {
		t.Error("ShowOnCursorMove should default off")
	}
	if !d.Hover.ShowOnMouseMove {
		t.Error("ShowOnMouseMove should default on")
	}
	if d.Hover.HoverTime != 250 {
		t.Errorf("HoverTime = %d, want 250", d.Hover.HoverTime)
	}
	if !d.SignatureHelp.ShowOverlayWhileTyping {
		t.Error("ShowOverlayWhileTyping should default on")
	}
	if d.SignatureHelp.IncludeSignatureDocumentation {
		t.Error("IncludeSignatureDocumentation should default off")
	}
}

func TestStore_SetNotifiesObservers(t *testing.T) {
	s := NewStore(Defaults())

	var got []Change
	sub := s.Subscribe(func(ch Change) { got = append(got, ch) })
	defer sub.Dispose()

	if err := s.Set(PathHoverTime, 500); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("got %d changes, want 1", len(got))
	}
	if got[0].Path != PathHoverTime || got[0].Old != 250 || got[0].New != 500 {
		t.Errorf("change = %+v", got[0])
	}
	if s.Get().Hover.HoverTime != 500 {
		t.Errorf("HoverTime = %d after Set", s.Get().Hover.HoverTime)
	}
}

func TestStore_SetSameValueIsSilent(t *testing.T) {
	s := NewStore(Defaults())

	calls := 0
	sub := s.Subscribe(func(Change) { calls++ })
	defer sub.Dispose()

	if err := s.Set(PathShowOnMouseMove, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 0 {
		t.Errorf("observer called %d times for a no-op change", calls)
	}
}

func TestStore_SubscribePathFilters(t *testing.T) {
	s := NewStore(Defaults())

	var hoverChanges, sigChanges int
	s.SubscribePath("hover", func(Change) { hoverChanges++ })
	s.SubscribePath("signatureHelp", func(Change) { sigChanges++ })

	if err := s.Set(PathHoverTime, 100); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(PathShowWhileTyping, false); err != nil {
		t.Fatalf("Set: %v", err)
	}

	if hoverChanges != 1 || sigChanges != 1 {
		t.Errorf("hover=%d sig=%d, want 1 each", hoverChanges, sigChanges)
	}
}

func TestStore_DisposeStopsNotifications(t *testing.T) {
	s := NewStore(Defaults())

	calls := 0
	sub := s.Subscribe(func(Change) { calls++ })
	sub.Dispose()
	sub.Dispose() // idempotent

	if err := s.Set(PathHoverTime, 10); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if calls != 0 {
		t.Errorf("disposed observer called %d times", calls)
	}
}

func TestStore_SetErrors(t *testing.T) {
	s := NewStore(Defaults())

	if err := s.Set("hover.noSuchSetting", true); !errors.Is(err, ErrUnknownSetting) {
		t.Errorf("unknown path error = %v", err)
	}
	if err := s.Set(PathHoverTime, "fast"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("wrong type error = %v", err)
	}
}

func TestStore_SetAcceptsInt64(t *testing.T) {
	s := NewStore(Defaults())

	if err := s.Set(PathHoverTime, int64(750)); err != nil {
		t.Fatalf("Set int64: %v", err)
	}
	if got := s.Get().Hover.HoverTime; got != 750 {
		t.Errorf("HoverTime = %d, want 750", got)
	}
	if err := s.Set(PathOffTextThreshold, int64(2)); err != nil {
		t.Fatalf("Set int64 into float: %v", err)
	}
	if got := s.Get().Hover.OffTextThreshold; got != 2.0 {
		t.Errorf("OffTextThreshold = %v, want 2.0", got)
	}
}

func TestLoadFrom(t *testing.T) {
	input := `
[hover]
showOnCursorMove = true
hoverTime = 100

[signatureHelp]
showOverlayWhileTyping = false
`
	settings, err := LoadFrom(strings.NewReader(input))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if !settings.Hover.ShowOnCursorMove {
		t.Error("showOnCursorMove not applied")
	}
	if settings.Hover.HoverTime != 100 {
		t.Errorf("hoverTime = %d, want 100", settings.Hover.HoverTime)
	}
	if settings.SignatureHelp.ShowOverlayWhileTyping {
		t.Error("showOverlayWhileTyping not applied")
	}

	// Keys absent from the file keep defaults.
	if !settings.Hover.ShowOnMouseMove {
		t.Error("showOnMouseMove lost its default")
	}
	if settings.Hover.OffTextThreshold != 1.0 {
		t.Errorf("offTextThreshold = %v, want default 1.0", settings.Hover.OffTextThreshold)
	}
}

func TestLoadFrom_ParseError(t *testing.T) {
	_, err := LoadFrom(strings.NewReader("[hover\nbroken"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("error %T, want *ParseError", err)
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	settings, err := Load(t.TempDir() + "/nope.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if settings != Defaults() {
		t.Errorf("settings = %+v, want defaults", settings)
	}
}
