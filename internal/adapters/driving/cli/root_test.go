package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reportlens/internal/adapters/driven/config/file"
	"github.com/custodia-labs/reportlens/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/reportlens/internal/core/domain"
	"github.com/custodia-labs/reportlens/internal/core/ports/driving"
	"github.com/custodia-labs/reportlens/internal/core/services"
)

// mockEngine records what the commands asked of it.
type mockEngine struct {
	settings   domain.Settings
	ran        bool
	runErr     error
	processed  string
	result     *domain.AnalysisResult
	processErr error
	stored     string
	manifest   *domain.VisualizationManifest
	storedErr  error
	toolsErr   error
}

func (m *mockEngine) Run(_ context.Context) error {
	m.ran = true
	return m.runErr
}

func (m *mockEngine) Process(_ context.Context, path string) (*domain.AnalysisResult, error) {
	m.processed = path
	if m.processErr != nil {
		return nil, m.processErr
	}
	return m.result, nil
}

func (m *mockEngine) Stored(path string) (*domain.AnalysisResult, *domain.VisualizationManifest, error) {
	m.stored = path
	if m.storedErr != nil {
		return nil, nil, m.storedErr
	}
	return m.result, m.manifest, nil
}

func (m *mockEngine) CheckTools() error {
	return m.toolsErr
}

// setupCLITest installs an in-memory settings service and a mock engine,
// and restores the package state afterwards.
func setupCLITest(t *testing.T) (*mockEngine, *services.SettingsService) {
	t.Helper()

	oldSettings, oldOpen, oldEngine := settingsService, openSettings, newEngine
	service := services.NewSettingsService(memory.NewConfigStore())
	engine := &mockEngine{}

	SetServices(Services{
		Settings: service,
		NewEngine: func(settings domain.Settings, _ *log.Logger) (Engine, error) {
			engine.settings = settings
			return engine, nil
		},
	})

	t.Cleanup(func() {
		settingsService, openSettings, newEngine = oldSettings, oldOpen, oldEngine
		resetFlags(rootCmd, watchCmd, analyzeCmd, showCmd)
		rootCmd.SetArgs(nil)
	})
	return engine, service
}

// resetFlags restores flag defaults; cobra keeps parsed values between runs.
func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		for _, fs := range []*pflag.FlagSet{c.Flags(), c.PersistentFlags()} {
			fs.VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "reportlens", rootCmd.Use)
}

func TestRootCmd_HasPersistentFlags(t *testing.T) {
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"watch", "analyze", "show", "settings", "version"})
}

func TestRootCmd_ConfigFlagOpensSettings(t *testing.T) {
	setupCLITest(t)

	path := filepath.Join(t.TempDir(), "alt.toml")
	require.NoError(t, os.WriteFile(path, []byte("[processing]\nworkers = 7\n"), 0o600))
	openSettings = func(p string) (driving.SettingsService, error) {
		store, err := file.NewConfigStoreAt(p)
		if err != nil {
			return nil, err
		}
		return services.NewSettingsService(store), nil
	}

	out, err := execute(t, "settings", "--config", path)

	require.NoError(t, err)
	assert.Contains(t, out, "processing.workers: 7")
}

func TestRootCmd_ConfigFlagWithoutLoader(t *testing.T) {
	setupCLITest(t)
	openSettings = nil

	_, err := execute(t, "settings", "--config", "/tmp/x.toml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "config loader not configured")
}

func TestRootCmd_ConfigFlagLoadError(t *testing.T) {
	setupCLITest(t)
	openSettings = func(string) (driving.SettingsService, error) {
		return nil, errors.New("permission denied")
	}

	_, err := execute(t, "settings", "--config", "/tmp/x.toml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied")
}
