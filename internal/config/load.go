package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	// tomlv1 is used for syntax validation only; its parse errors carry
	// line and column positions that v2 decode errors lack.
	tomlv1 "github.com/pelletier/go-toml"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/printbed/klippctl/internal/messages"
)

// Load reads the settings file at path. A missing file is not an error:
// defaults are returned so a fresh system works without any setup.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		s := Default()
		return &s, nil
	}
	if err != nil {
		return nil, fmt.Errorf(messages.ConfigReadFailedFmt, path, err)
	}
	return Parse(data, path)
}

// Parse decodes settings TOML. data is the file content; source names it in errors.
func Parse(data []byte, source string) (*Settings, error) {
	if _, err := tomlv1.LoadBytes(data); err != nil {
		return nil, fmt.Errorf(messages.ConfigSyntaxErrorFmt, source, err)
	}
	s := Default()
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf(messages.ConfigDecodeFailedFmt, source, err)
	}
	if err := decodeStrict(data); err != nil {
		return nil, fmt.Errorf(messages.ConfigUnknownKeysFmt, source, err)
	}
	return &s, nil
}

// decodeStrict re-decodes with unknown-field rejection so typos in the
// settings file surface instead of being silently ignored.
func decodeStrict(data []byte) error {
	var s Settings
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(&s)
}

// Save writes the settings to path, creating the parent directory if needed.
func Save(path string, s *Settings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf(messages.ConfigWriteFailedFmt, path, err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf(messages.ConfigCreateDirFailedFmt, dir, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.ConfigWriteFailedFmt, path, err)
	}
	return nil
}
