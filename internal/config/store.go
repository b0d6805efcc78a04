package config

import (
	"fmt"
	"strings"
	"sync"
)

// Change describes one modified setting.
type Change struct {
	// Path is the dotted setting path, e.g. "hover.hoverTime".
	Path string

	// Old and New are the values before and after the change.
	Old any
	New any
}

// Subscription is a handle on a registered observer.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Dispose removes the observer. Safe to call more than once.
func (s *Subscription) Dispose() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

type observer struct {
	prefix string
	fn     func(Change)
}

// Store holds the live settings and notifies observers of changes.
// All methods are safe for concurrent use. Observers are invoked
// synchronously from the mutating goroutine, outside the store lock.
type Store struct {
	mu        sync.RWMutex
	settings  Settings
	nextID    uint64
	observers map[uint64]observer
}

// NewStore creates a store seeded with the given settings.
func NewStore(settings Settings) *Store {
	return &Store{
		settings:  settings,
		observers: make(map[uint64]observer),
	}
}

// Get returns the current settings snapshot.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Update replaces the settings wholesale and notifies observers of every
// path whose value differs.
func (s *Store) Update(next Settings) {
	s.mu.Lock()
	prev := s.settings
	s.settings = next
	obs := s.snapshotObserversLocked()
	s.mu.Unlock()

	for _, ch := range diff(prev, next) {
		notify(obs, ch)
	}
}

// Set changes a single setting identified by its dotted path. The value
// must match the setting's type, except that integer settings also accept
// the widening from smaller integer kinds go-toml produces.
func (s *Store) Set(path string, value any) error {
	s.mu.RLock()
	next := s.settings
	s.mu.RUnlock()

	if err := apply(&next, path, value); err != nil {
		return err
	}
	s.Update(next)
	return nil
}

// Subscribe registers fn for every change. The returned subscription
// removes it.
func (s *Store) Subscribe(fn func(Change)) *Subscription {
	return s.SubscribePath("", fn)
}

// SubscribePath registers fn for changes whose path starts with prefix.
// A prefix of "hover" observes the whole hover section.
func (s *Store) SubscribePath(prefix string, fn func(Change)) *Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.observers[id] = observer{prefix: prefix, fn: fn}
	s.mu.Unlock()

	return &Subscription{cancel: func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}}
}

func (s *Store) snapshotObserversLocked() []observer {
	out := make([]observer, 0, len(s.observers))
	for _, o := range s.observers {
		out = append(out, o)
	}
	return out
}

func notify(obs []observer, ch Change) {
	for _, o := range obs {
		if o.prefix == "" || strings.HasPrefix(ch.Path, o.prefix) {
			o.fn(ch)
		}
	}
}

func diff(prev, next Settings) []Change {
	var changes []Change
	add := func(path string, old, new any) {
		if old != new {
			changes = append(changes, Change{Path: path, Old: old, New: new})
		}
	}

	add(PathShowOnCursorMove, prev.Hover.ShowOnCursorMove, next.Hover.ShowOnCursorMove)
	add(PathShowOnMouseMove, prev.Hover.ShowOnMouseMove, next.Hover.ShowOnMouseMove)
	add(PathHoverTime, prev.Hover.HoverTime, next.Hover.HoverTime)
	add(PathOffTextThreshold, prev.Hover.OffTextThreshold, next.Hover.OffTextThreshold)
	add(PathShowWhileTyping, prev.SignatureHelp.ShowOverlayWhileTyping, next.SignatureHelp.ShowOverlayWhileTyping)
	add(PathIncludeSignatureDoc, prev.SignatureHelp.IncludeSignatureDocumentation, next.SignatureHelp.IncludeSignatureDocumentation)
	add(PathRetriggerOnPairSkip, prev.SignatureHelp.RetriggerOnPairSkip, next.SignatureHelp.RetriggerOnPairSkip)
	add(PathPairSkipCharacters, prev.SignatureHelp.PairSkipCharacters, next.SignatureHelp.PairSkipCharacters)
	return changes
}

func apply(s *Settings, path string, value any) error {
	switch path {
	case PathShowOnCursorMove:
		return setBool(&s.Hover.ShowOnCursorMove, path, value)
	case PathShowOnMouseMove:
		return setBool(&s.Hover.ShowOnMouseMove, path, value)
	case PathHoverTime:
		return setInt(&s.Hover.HoverTime, path, value)
	case PathOffTextThreshold:
		return setFloat(&s.Hover.OffTextThreshold, path, value)
	case PathShowWhileTyping:
		return setBool(&s.SignatureHelp.ShowOverlayWhileTyping, path, value)
	case PathIncludeSignatureDoc:
		return setBool(&s.SignatureHelp.IncludeSignatureDocumentation, path, value)
	case PathRetriggerOnPairSkip:
		return setBool(&s.SignatureHelp.RetriggerOnPairSkip, path, value)
	case PathPairSkipCharacters:
		return setString(&s.SignatureHelp.PairSkipCharacters, path, value)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSetting, path)
	}
}

func setBool(dst *bool, path string, value any) error {
	v, ok := value.(bool)
	if !ok {
		return typeError(path, "bool", value)
	}
	*dst = v
	return nil
}

func setInt(dst *int, path string, value any) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	default:
		return typeError(path, "int", value)
	}
	return nil
}

func setFloat(dst *float64, path string, value any) error {
	switch v := value.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	case int64:
		*dst = float64(v)
	default:
		return typeError(path, "float", value)
	}
	return nil
}

func setString(dst *string, path string, value any) error {
	v, ok := value.(string)
	if !ok {
		return typeError(path, "string", value)
	}
	*dst = v
	return nil
}

func typeError(path, want string, got any) error {
	return fmt.Errorf("%w: %s wants %s, got %T", ErrInvalidValue, path, want, got)
}
