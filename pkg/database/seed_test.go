package database

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedInstallsBundleOnce(t *testing.T) {
	dir := t.TempDir()
	resource := filepath.Join(dir, "bundle.db")
	require.NoError(t, os.WriteFile(resource, []byte("catalog-bytes"), 0o644))

	cfg := Config{
		Path:         filepath.Join(dir, "runtime", "webnovel.db"),
		ResourcePath: resource,
	}

	var s Seeder
	require.NoError(t, s.Seed(cfg))

	got, err := os.ReadFile(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, "catalog-bytes", string(got))

	// a second call must not touch the runtime copy
	require.NoError(t, os.WriteFile(cfg.Path, []byte("user-data"), 0o644))
	require.NoError(t, s.Seed(cfg))
	got, err = os.ReadFile(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, "user-data", string(got))
}

func TestSeedKeepsExistingRuntimeCopy(t *testing.T) {
	dir := t.TempDir()
	resource := filepath.Join(dir, "bundle.db")
	require.NoError(t, os.WriteFile(resource, []byte("bundle"), 0o644))

	cfg := Config{Path: filepath.Join(dir, "webnovel.db"), ResourcePath: resource}
	require.NoError(t, os.WriteFile(cfg.Path, []byte("existing"), 0o644))

	var s Seeder
	require.NoError(t, s.Seed(cfg))

	got, err := os.ReadFile(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, "existing", string(got))
}

func TestSeedMissingBundleErrorsButLeavesNothingBehind(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Path:         filepath.Join(dir, "webnovel.db"),
		ResourcePath: filepath.Join(dir, "no-such-bundle.db"),
	}

	var s Seeder
	err := s.Seed(cfg)
	require.Error(t, err)

	_, statErr := os.Stat(cfg.Path)
	assert.True(t, os.IsNotExist(statErr), "a failed seed must not create a runtime file")
}

func TestSeedConcurrentFirstUseCopiesAtMostOnce(t *testing.T) {
	dir := t.TempDir()
	resource := filepath.Join(dir, "bundle.db")
	require.NoError(t, os.WriteFile(resource, []byte("bundle"), 0o644))

	cfg := Config{Path: filepath.Join(dir, "webnovel.db"), ResourcePath: resource}

	var s Seeder
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Seed(cfg)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	got, err := os.ReadFile(cfg.Path)
	require.NoError(t, err)
	assert.Equal(t, "bundle", string(got))
}
