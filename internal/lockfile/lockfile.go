// Package lockfile serializes klippctl processes with an advisory file lock.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/printbed/klippctl/internal/messages"
)

var (
	flockFunc = unix.Flock
	sleepFunc = time.Sleep

	waitTimeout = 30 * time.Second
	pollEvery   = 100 * time.Millisecond
)

type handle struct {
	file *os.File
}

// WithLock acquires an exclusive lock on path, runs fn, and releases the
// lock. Install, update, and remove flows run under this lock so two
// processes cannot drive apt or git against the same machine at once.
func WithLock(path string, fn func() error) error {
	h, err := acquire(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = h.release()
	}()
	return fn()
}

// acquire opens or creates path and takes an exclusive advisory lock,
// polling until waitTimeout passes.
func acquire(path string) (*handle, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf(messages.LockOpenFailedFmt, path, err)
	}
	deadline := time.Now().Add(waitTimeout)
	for {
		err := flockFunc(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			return &handle{file: file}, nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EAGAIN) {
			_ = file.Close()
			return nil, err
		}
		if time.Now().After(deadline) {
			_ = file.Close()
			return nil, fmt.Errorf(messages.LockAcquireTimeoutFmt, path, waitTimeout)
		}
		sleepFunc(pollEvery)
	}
}

// release unlocks and closes the lock file.
func (h *handle) release() error {
	if h == nil || h.file == nil {
		return nil
	}
	if err := flockFunc(int(h.file.Fd()), unix.LOCK_UN); err != nil {
		_ = h.file.Close()
		return err
	}
	return h.file.Close()
}
