// Package overlay implements the hover and signature-help overlay engine.
//
// The engine is a small state machine: it is either idle, showing a hover
// overlay anchored to a buffer range, or showing a signature-help overlay
// anchored to the cursor. Five event sources race to drive transitions:
// pointer rest, cursor rest, text edits, explicit toggles, and provider
// responses arriving after their trigger became stale.
//
// Provider queries are never cancelled. Every state transition bumps an
// epoch counter; a query captures the epoch when issued and its result is
// discarded on arrival when the epoch moved on. Overlays therefore go
// stale-while-revalidate: the previous overlay stays mounted until a fresh
// result replaces it or an event dismisses it.
package overlay
