// Package backup writes timestamped snapshots of printer configuration and
// web interface files before updates touch them.
package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/printbed/klippctl/internal/fsutil"
	"github.com/printbed/klippctl/internal/messages"
)

// ErrNoSources reports that none of the requested backup sources exist.
var ErrNoSources = errors.New("no backup sources exist")

// stampLayout orders snapshot directories chronologically when sorted by name.
const stampLayout = "20060102-150405"

// Manager creates snapshots under a single backup root.
type Manager struct {
	root string
	now  func() time.Time
	log  zerolog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithLogger attaches a logger for per-source progress.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager returns a Manager writing snapshots under root.
func NewManager(root string, opts ...Option) *Manager {
	m := &Manager{
		root: root,
		now:  time.Now,
		log:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Snapshot copies every existing source into a fresh timestamped directory
// tagged with name and returns the directory path. Sources that do not
// exist are skipped; when none exist, ErrNoSources is returned and nothing
// is created.
func (m *Manager) Snapshot(name string, sources []string) (string, error) {
	existing := make([]string, 0, len(sources))
	for _, src := range sources {
		if _, err := os.Stat(src); err == nil {
			existing = append(existing, src)
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf(messages.BackupSourceStatFmt, src, err)
		}
	}
	if len(existing) == 0 {
		return "", ErrNoSources
	}

	dir := filepath.Join(m.root, m.now().Format(stampLayout)+"_"+name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf(messages.BackupCreateDirFmt, dir, err)
	}
	for _, src := range existing {
		dst := filepath.Join(dir, filepath.Base(src))
		m.log.Info().Str("source", src).Str("target", dst).Msg("backing up")
		if err := fsutil.CopyTree(src, dst); err != nil {
			return "", fmt.Errorf(messages.BackupCopyFailedFmt, src, dst, err)
		}
	}
	return dir, nil
}
