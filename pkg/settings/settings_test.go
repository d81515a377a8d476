package settings

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/renameio/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.yaml"), testLogger())
	require.NoError(t, err)

	assert.Equal(t, 10, s.Int(MaxItemsPerSection))
	assert.True(t, s.Bool(SystemdSectionEnabled))
	assert.True(t, s.Bool(SystemdFilterSystemServices))
	assert.False(t, s.Bool(SystemdFilterUserServices))
	assert.False(t, s.Bool(PodmanSectionEnabled))
	assert.Equal(t, "", s.String(SystemdPriorityList))
}

func TestLoadParsesValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `
max-items-per-section: 4
systemd-section-filter-priority-list: true
systemd-section-items-priority-list: "nginx, sshd"
docker-section-show-images: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 4, s.Int(MaxItemsPerSection))
	assert.True(t, s.Bool(SystemdFilterPriorityList))
	assert.Equal(t, "nginx, sshd", s.String(SystemdPriorityList))
	assert.False(t, s.Bool(DockerShowImages))
	assert.Empty(t, s.Validate())
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max-items-per-section: [1,"), 0o644))

	_, err := Load(path, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse settings")
}

func TestMistypedValueFallsBackToDefault(t *testing.T) {
	s := NewMemory(map[string]any{
		MaxItemsPerSection:    "ten",
		SystemdSectionEnabled: "yes",
	})
	assert.Equal(t, 10, s.Int(MaxItemsPerSection))
	assert.True(t, s.Bool(SystemdSectionEnabled))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]any
		want   string
	}{
		{"unknown key", map[string]any{"colour": "red"}, `unknown key "colour"`},
		{"int type", map[string]any{MaxItemsPerSection: "x"}, "must be an integer"},
		{"bool type", map[string]any{CronSectionEnabled: 1}, "must be true or false"},
		{"string type", map[string]any{SystemdPriorityList: true}, "must be a string"},
		{"min items", map[string]any{MaxItemsPerSection: 0}, "must be at least 1"},
		{"no scope", map[string]any{SystemdFilterSystemServices: false}, "cannot both be false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := Validate(tt.values)
			require.NotEmpty(t, errs)
			found := false
			for _, e := range errs {
				if strings.Contains(e.Error(), tt.want) {
					found = true
				}
			}
			assert.True(t, found, "expected error containing %q, got %v", tt.want, errs)
		})
	}

	assert.Empty(t, Validate(map[string]any{SystemdFilterSystemServices: false, SystemdFilterUserServices: true}))
}

func TestSetPersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	s, err := Load(path, testLogger())
	require.NoError(t, err)

	require.NoError(t, s.Set(MaxItemsPerSection, "3"))
	require.NoError(t, s.Set(PodmanSectionEnabled, "true"))
	require.NoError(t, s.Set(SystemdPriorityList, "a,b"))

	reloaded, err := Load(path, testLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Int(MaxItemsPerSection))
	assert.True(t, reloaded.Bool(PodmanSectionEnabled))
	assert.Equal(t, "a,b", reloaded.String(SystemdPriorityList))
}

func TestSetRejectsInvalid(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "settings.yaml"), testLogger())
	require.NoError(t, err)

	assert.Error(t, s.Set("nope", "1"))
	assert.Error(t, s.Set(MaxItemsPerSection, "many"))
	assert.Error(t, s.Set(CronSectionEnabled, "maybe"))
	assert.Error(t, s.Set(MaxItemsPerSection, "0"))
	assert.Equal(t, 10, s.Int(MaxItemsPerSection), "rejected value must not be kept")

	assert.Error(t, s.Set(SystemdFilterSystemServices, "false"))
	assert.True(t, s.Bool(SystemdFilterSystemServices))
}

func TestGet(t *testing.T) {
	s := NewMemory(map[string]any{MaxItemsPerSection: 7})

	v, err := s.Get(MaxItemsPerSection)
	require.NoError(t, err)
	assert.Equal(t, "7", v)

	v, err = s.Get(CronSectionEnabled)
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	_, err = s.Get("bogus")
	assert.Error(t, err)
}

func TestWatchReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	s, err := Load(path, testLogger())
	require.NoError(t, err)

	changed := make(chan struct{}, 8)
	stop, err := s.Watch(context.Background(), func() { changed <- struct{}{} })
	require.NoError(t, err)
	defer func() { require.NoError(t, stop()) }()

	require.NoError(t, renameio.WriteFile(path, []byte("max-items-per-section: 2\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for settings reload")
	}
	assert.Equal(t, 2, s.Int(MaxItemsPerSection))
}

func TestWatchMemoryStore(t *testing.T) {
	_, err := NewMemory(nil).Watch(context.Background(), func() {})
	assert.Error(t, err)
}
