package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrLockTimeout means another holder kept the lock past the wait budget.
var ErrLockTimeout = errors.New("timeout acquiring lock")

// Two simbatch runs on the same working dir would race over simboxtemp.json
// and the output table, so a batch takes a mkdir-based lock on the working
// dir for its whole duration.

const lockStaleAfter = 2 * time.Minute

type lockOwnerV1 struct {
	V         int    `json:"v"`
	PID       int    `json:"pid"`
	StartedAt string `json:"startedAt"`
}

// WithDirLock runs fn while holding lockDir, waiting up to wait for a
// competing holder to release it.
func WithDirLock(lockDir string, wait time.Duration, fn func() error) error {
	release, err := acquireDirLock(lockDir, wait)
	if err != nil {
		return err
	}
	defer func() { _ = release() }()
	return fn()
}

func readLockOwner(lockDir string) (lockOwnerV1, bool) {
	raw, err := os.ReadFile(filepath.Join(lockDir, "owner.json"))
	if err != nil {
		return lockOwnerV1{}, false
	}
	var owner lockOwnerV1
	if err := json.Unmarshal(raw, &owner); err != nil {
		return lockOwnerV1{}, false
	}
	if owner.PID <= 0 {
		return lockOwnerV1{}, false
	}
	return owner, true
}

// shouldBreakStaleLock reports whether lockDir looks abandoned: old enough
// and, when owner metadata is readable, owned by a dead process. A batch can
// legitimately hold the lock for a long time, so age alone is not enough
// when the owner is still alive.
func shouldBreakStaleLock(lockDir string, staleAfter time.Duration, now time.Time) bool {
	info, err := os.Stat(lockDir)
	if err != nil {
		return false
	}
	if now.Sub(info.ModTime()) <= staleAfter {
		return false
	}
	if owner, ok := readLockOwner(lockDir); ok {
		if processAlive(owner.PID) {
			return false
		}
	}
	return true
}

func acquireDirLock(lockDir string, wait time.Duration) (func() error, error) {
	deadline := time.Now().Add(wait)
	for {
		if err := os.Mkdir(lockDir, 0o755); err == nil {
			// Best-effort owner metadata for stale-lock cleanup after a crash.
			owner := lockOwnerV1{V: 1, PID: os.Getpid(), StartedAt: time.Now().UTC().Format(time.RFC3339Nano)}
			if b, err := json.Marshal(owner); err == nil {
				_ = os.WriteFile(filepath.Join(lockDir, "owner.json"), b, 0o644)
			}
			return func() error { return os.RemoveAll(lockDir) }, nil
		} else if !os.IsExist(err) {
			return nil, err
		}

		if shouldBreakStaleLock(lockDir, lockStaleAfter, time.Now()) {
			_ = os.RemoveAll(lockDir)
			continue
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s (another simbatch run on this working dir?)", ErrLockTimeout, lockDir)
		}
		time.Sleep(25 * time.Millisecond)
	}
}
