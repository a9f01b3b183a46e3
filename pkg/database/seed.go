package database

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Seeder copies the bundled dataset into the runtime location the first
// time it is asked, and is a no-op afterwards. Safe for concurrent use.
type Seeder struct {
	once sync.Once
	err  error
}

// Seed guarantees the runtime catalog exists. A missing bundle is an error
// for the caller to log; the runtime keeps going and later queries fail soft.
func (s *Seeder) Seed(cfg Config) error {
	s.once.Do(func() {
		s.err = seed(cfg)
	})
	return s.err
}

func seed(cfg Config) error {
	if _, err := os.Stat(cfg.Path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat runtime db: %w", err)
	}

	if cfg.ResourcePath == "" {
		return nil
	}
	src, err := os.Open(cfg.ResourcePath)
	if err != nil {
		return fmt.Errorf("bundled dataset missing: %w", err)
	}
	defer src.Close()

	if err := EnsureDataDir(cfg); err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	// Write to a temp file and rename so an interrupted copy never leaves
	// a half-written catalog at the runtime path.
	tmp, err := os.CreateTemp(filepath.Dir(cfg.Path), ".webnovel-*.db")
	if err != nil {
		return fmt.Errorf("create temp db: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("copy dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp db: %w", err)
	}
	if err := os.Rename(tmpName, cfg.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("install dataset: %w", err)
	}
	return nil
}
