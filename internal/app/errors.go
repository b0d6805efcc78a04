package app

import "errors"

// ErrUnknownCommand indicates an Execute call with an unregistered name.
var ErrUnknownCommand = errors.New("unknown command")
