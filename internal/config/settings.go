// Package config provides the engine's live-observed settings: typed
// access, change notification, TOML file loading, and file-watch reload.
package config

import "time"

// HoverSettings gates hover overlay triggering.
type HoverSettings struct {
	// ShowOnCursorMove enables hover resolution when the cursor rests.
	ShowOnCursorMove bool `toml:"showOnCursorMove"`

	// ShowOnMouseMove enables hover resolution when the pointer rests.
	ShowOnMouseMove bool `toml:"showOnMouseMove"`

	// HoverTime is the rest debounce duration in milliseconds, shared by
	// the pointer-rest and cursor-rest schedulers.
	HoverTime int `toml:"hoverTime"`

	// OffTextThreshold is the multiplier of the default character width
	// beyond which a pointer counts as off text. A heuristic, not a
	// correctness contract; kept tunable.
	OffTextThreshold float64 `toml:"offTextThreshold"`
}

// RestDuration returns HoverTime as a duration.
func (h HoverSettings) RestDuration() time.Duration {
	return time.Duration(h.HoverTime) * time.Millisecond
}

// SignatureSettings gates signature-help behavior.
type SignatureSettings struct {
	// ShowOverlayWhileTyping enables signature (re)triggering on edits.
	ShowOverlayWhileTyping bool `toml:"showOverlayWhileTyping"`

	// IncludeSignatureDocumentation appends the whole signature's
	// documentation below the parameter documentation.
	IncludeSignatureDocumentation bool `toml:"includeSignatureDocumentation"`

	// RetriggerOnPairSkip enables the heuristic that treats a one-column
	// cursor skip over a closing pair character as a synthetic insertion.
	RetriggerOnPairSkip bool `toml:"retriggerOnPairSkip"`

	// PairSkipCharacters are the closing bracket/quote characters the
	// pair-skip heuristic recognizes.
	PairSkipCharacters string `toml:"pairSkipCharacters"`
}

// Settings is the full recognized configuration surface.
type Settings struct {
	Hover         HoverSettings     `toml:"hover"`
	SignatureHelp SignatureSettings `toml:"signatureHelp"`
}

// Defaults returns the default settings.
func Defaults() Settings {
	return Settings{
		Hover: HoverSettings{
			ShowOnCursorMove: false,
			ShowOnMouseMove:  true,
			HoverTime:        250,
			OffTextThreshold: 1.0,
		},
		SignatureHelp: SignatureSettings{
			ShowOverlayWhileTyping:        true,
			IncludeSignatureDocumentation: false,
			RetriggerOnPairSkip:           true,
			PairSkipCharacters:            ")]}\"'`",
		},
	}
}

// Setting paths as they appear in change notifications and Set calls.
const (
	PathShowOnCursorMove    = "hover.showOnCursorMove"
	PathShowOnMouseMove     = "hover.showOnMouseMove"
	PathHoverTime           = "hover.hoverTime"
	PathOffTextThreshold    = "hover.offTextThreshold"
	PathShowWhileTyping     = "signatureHelp.showOverlayWhileTyping"
	PathIncludeSignatureDoc = "signatureHelp.includeSignatureDocumentation"
	PathRetriggerOnPairSkip = "signatureHelp.retriggerOnPairSkip"
	PathPairSkipCharacters  = "signatureHelp.pairSkipCharacters"
)
