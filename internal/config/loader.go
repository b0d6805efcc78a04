package config

import (
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Load reads settings from a TOML file at path. A missing file is not an
// error; defaults are returned. Keys absent from the file keep their
// default values.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return Defaults(), fmt.Errorf("reading config file %s: %w", path, err)
	}
	return parse(path, data)
}

// LoadFrom reads settings from an io.Reader.
func LoadFrom(r io.Reader) (Settings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Defaults(), fmt.Errorf("reading config: %w", err)
	}
	return parse("<reader>", data)
}

func parse(source string, data []byte) (Settings, error) {
	settings := Defaults()
	if err := toml.Unmarshal(data, &settings); err != nil {
		return Defaults(), &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return settings, nil
}

// ParseError reports a malformed configuration file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
