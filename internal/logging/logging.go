// Package logging writes the persistent session log.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/printbed/klippctl/internal/messages"
)

// Open appends to the session log at path and returns the logger plus a
// close function. The terminal never sees this output; it exists so a
// failed install or update can be reconstructed afterwards.
func Open(path string) (zerolog.Logger, func(), error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf(messages.ConfigCreateDirFailedFmt, dir, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Nop(), func() {}, fmt.Errorf(messages.LogOpenFailedFmt, path, err)
	}
	logger := zerolog.New(f).With().Timestamp().Logger()
	return logger, func() { _ = f.Close() }, nil
}
