package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore(t *testing.T) {
	store, dir := newStore(t)

	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	_, err := os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err), "file is written on first Set")
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, DirName, "config.toml"), store.Path())
	info, err := os.Stat(filepath.Join(home, DirName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "etc", "reportlens")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_Errors(t *testing.T) {
	t.Run("cannot create directory", func(t *testing.T) {
		store, err := NewConfigStore("/dev/null/reportlens")
		assert.Error(t, err)
		assert.Nil(t, store)
	})

	t.Run("corrupt file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[watch\ndirectory = "), 0600))

		store, err := NewConfigStore(dir)
		assert.Error(t, err)
		assert.Nil(t, store)
	})
}

func TestNewConfigStore_StartsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{name: "no file"},
		{name: "empty file", content: ptr("")},
		{name: "comments only", content: ptr("# reportlens settings\n\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.content != nil {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(*tt.content), 0600))
			}

			store, err := NewConfigStore(dir)
			require.NoError(t, err)

			val, ok := store.Get("watch.directory")
			assert.False(t, ok)
			assert.Nil(t, val)
		})
	}
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("watch.directory", "/srv/reports"))
	require.NoError(t, store.Set("processing.workers", 4))
	require.NoError(t, store.Set("processing.queue_size", int64(128)))
	require.NoError(t, store.Set("analysis.trend_epsilon", 0.05))
	require.NoError(t, store.Set("analysis.correlation_threshold", 1))

	assert.Equal(t, "/srv/reports", store.GetString("watch.directory"))
	assert.Equal(t, 4, store.GetInt("processing.workers"))
	assert.Equal(t, 128, store.GetInt("processing.queue_size"))
	assert.InDelta(t, 0.05, store.GetFloat("analysis.trend_epsilon"), 1e-12)
	assert.InDelta(t, 1.0, store.GetFloat("analysis.correlation_threshold"), 1e-12, "integers widen")

	// Missing keys and mismatched types read as zero values.
	assert.Empty(t, store.GetString("processing.workers"))
	assert.Zero(t, store.GetInt("watch.directory"))
	assert.Zero(t, store.GetFloat("watch.directory"))
	assert.Empty(t, store.GetString("metrics.address"))
	assert.Zero(t, store.GetInt("metrics.address"))
}

func TestConfigStore_PersistsAcrossInstances(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Set("watch.directory", "/srv/reports"))
	require.NoError(t, store.Set("watch.poll_interval", "5s"))
	require.NoError(t, store.Set("processing.workers", 4))
	require.NoError(t, store.Set("analysis.trend_epsilon", 0.25))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "/srv/reports", reopened.GetString("watch.directory"))
	assert.Equal(t, "5s", reopened.GetString("watch.poll_interval"))
	assert.Equal(t, 4, reopened.GetInt("processing.workers"))
	assert.InDelta(t, 0.25, reopened.GetFloat("analysis.trend_epsilon"), 1e-12)
}

func TestConfigStore_WritesTables(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("watch.directory", "/srv/reports"))
	require.NoError(t, store.Set("processing.workers", 4))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "[watch]")
	assert.Contains(t, content, "[processing]")
	assert.NotContains(t, content, "watch.directory")

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_LoadsHandWrittenTOML(t *testing.T) {
	dir := t.TempDir()
	content := `
[watch]
directory = "/data/inbox"
backend = "polling"

[analysis]
correlation_threshold = 0.8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "/data/inbox", store.GetString("watch.directory"))
	assert.Equal(t, "polling", store.GetString("watch.backend"))
	assert.InDelta(t, 0.8, store.GetFloat("analysis.correlation_threshold"), 1e-12)
}

func TestConfigStore_Load_RereadsFile(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("processing.workers", 2))

	require.NoError(t, os.WriteFile(store.Path(), []byte("[processing]\nworkers = 9\n"), 0600))
	require.NoError(t, store.Load())
	assert.Equal(t, 9, store.GetInt("processing.workers"))

	require.NoError(t, os.WriteFile(store.Path(), []byte("][ not toml"), 0600))
	assert.Error(t, store.Load())
}

func TestConfigStore_Set_Errors(t *testing.T) {
	t.Run("value cannot be encoded", func(t *testing.T) {
		store, _ := newStore(t)
		assert.Error(t, store.Set("watch.directory", make(chan int)))
	})

	t.Run("path is a directory", func(t *testing.T) {
		store, _ := newStore(t)
		require.NoError(t, os.Mkdir(store.Path(), 0700))
		assert.Error(t, store.Set("watch.directory", "/srv"))
	})
}

func TestConfigStore_Save(t *testing.T) {
	store, _ := newStore(t)

	require.NoError(t, store.Save())

	_, err := os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store, _ := newStore(t)
	keys := []string{"watch.directory", "output.directory", "processing.workers", "analysis.trend_epsilon"}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := keys[i%len(keys)]
			_ = store.Set(key, i)
			_ = store.GetInt(key)
			_ = store.GetString(key)
			_ = store.GetFloat(key)
		}(i)
	}
	wg.Wait()

	for _, key := range keys {
		_, ok := store.Get(key)
		assert.True(t, ok, key)
	}
}

func TestNewConfigStoreAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")

	store, err := NewConfigStoreAt(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("output.directory", "/out"))

	assert.Equal(t, path, store.Path())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"metrics":             ":9100",
		"metrics.address":     ":9200",
		"watch.directory":     "/in",
		"watch.backend":       "polling",
		"processing.workers":  3,
		"analysis.epsilon.up": 0.1,
	})

	assert.Equal(t, ":9100", nested["metrics"])
	assert.Equal(t, ":9200", nested["metrics.address"], "scalar prefix keeps the key flat")
	assert.Equal(t, 3, nested["processing"].(map[string]any)["workers"])

	watch, ok := nested["watch"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "/in", watch["directory"])
	assert.Equal(t, "polling", watch["backend"])

	analysis, ok := nested["analysis"].(map[string]any)
	require.True(t, ok)
	epsilon, ok := analysis["epsilon"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.1, epsilon["up"])
}

func TestFlattenMap(t *testing.T) {
	flat := flattenMap(map[string]any{
		"watch": map[string]any{
			"directory": "/in",
			"nested":    map[string]any{"deep": true},
		},
		"top": 1,
	}, "")

	assert.Equal(t, map[string]any{
		"watch.directory":   "/in",
		"watch.nested.deep": true,
		"top":               1,
	}, flat)
}

func ptr(s string) *string { return &s }
