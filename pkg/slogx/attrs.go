// Package slogx provides small helpers for building log/slog attributes.
package slogx

import (
	"fmt"
	"log/slog"
)

// Error returns a slog.Attr with key "error" and the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// ByteString returns a slog.Attr with the byte slice rendered as a string.
func ByteString(key string, value []byte) slog.Attr {
	return slog.String(key, string(value))
}

// Stringer returns a slog.Attr holding the value's String() representation.
func Stringer(key string, value fmt.Stringer) slog.Attr {
	return slog.String(key, value.String())
}
