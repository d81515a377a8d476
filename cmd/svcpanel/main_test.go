package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modoterra/svcpanel/pkg/core"
	"github.com/modoterra/svcpanel/pkg/settings"
	"github.com/modoterra/svcpanel/pkg/watch"
)

// run executes the root command with isolated settings and log files.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	return runIn(t, filepath.Join(dir, "settings.yaml"), filepath.Join(dir, "svcpanel.log"), args...)
}

func runIn(t *testing.T, settingsFile, logPath string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(append([]string{"--settings", settingsFile, "--log-file", logPath}, args...))
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "svcpanel dev") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestSettingsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	out, err := runIn(t, path, "-", "settings", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != path {
		t.Errorf("path = %q, want %q", out, path)
	}
}

func TestSettingsSetAndGet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	logPath := filepath.Join(dir, "log")

	if _, err := runIn(t, path, logPath, "settings", "set", settings.MaxItemsPerSection, "4"); err != nil {
		t.Fatal(err)
	}
	out, err := runIn(t, path, logPath, "settings", "get", settings.MaxItemsPerSection)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "4" {
		t.Errorf("get = %q, want 4", out)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "max-items-per-section: 4") {
		t.Errorf("settings file not written: %s", data)
	}

	if _, err := runIn(t, path, logPath, "settings", "set", settings.MaxItemsPerSection, "0"); err == nil {
		t.Error("expected an error for max-items-per-section 0")
	}
}

func TestSettingsGetAll(t *testing.T) {
	out, err := run(t, "settings", "get")
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range settings.Keys() {
		if !strings.Contains(out, k+": ") {
			t.Errorf("missing %s in %q", k, out)
		}
	}
}

func TestSettingsValidateInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")
	content := []byte("systemd-section-filter-system-services: false\nbogus-key: 1\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runIn(t, path, filepath.Join(dir, "log"), "settings", "validate")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(out, "bogus-key") {
		t.Errorf("output does not mention unknown key: %q", out)
	}
}

func TestActionUnsupported(t *testing.T) {
	_, err := run(t, "start", "cron", "@daily backup")
	if err == nil || !strings.Contains(err.Error(), "Cron does not support start") {
		t.Fatalf("err = %v", err)
	}
}

func TestActionUnknownSection(t *testing.T) {
	_, err := run(t, "stop", "launchd", "x")
	if err == nil || !strings.Contains(err.Error(), "unknown section") {
		t.Fatalf("err = %v", err)
	}
}

func testStatuses() []sectionStatus {
	return []sectionStatus{
		{
			Section: core.SectionSystemd,
			Items: []itemStatus{
				{Item: core.Item{ID: "cron.service", Name: "cron", IsEnabled: true, IsActive: true, IsRunning: true}, Label: "cron", Actions: []core.ActionType{core.ActionStop, core.ActionRestart}},
				{Item: core.Item{ID: "ssh.service", Name: "ssh", IsEnabled: true}, Label: "ssh", Actions: []core.ActionType{core.ActionStart}},
			},
		},
		{Section: core.SectionDocker, Error: "Docker is not running!"},
	}
}

func TestWriteStatusTable(t *testing.T) {
	buf := &bytes.Buffer{}
	writeStatusTable(buf, testStatuses())
	out := buf.String()
	for _, want := range []string{"SECTION", "cron.service", "running", "stop,restart", "stopped", "Docker is not running!"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	writeStatusTable(buf, nil)
	if strings.TrimSpace(buf.String()) != "no active sections" {
		t.Errorf("empty table = %q", buf.String())
	}
}

func TestWriteStatusJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := writeStatusJSON(buf, testStatuses()); err != nil {
		t.Fatal(err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Fatalf("got %d sections", len(decoded))
	}
	items := decoded[0]["items"].([]any)
	first := items[0].(map[string]any)
	if first["id"] != "cron.service" || first["label"] != "cron" || first["is_running"] != true {
		t.Errorf("unexpected item %v", first)
	}
	if decoded[1]["error"] != "Docker is not running!" {
		t.Errorf("unexpected error field %v", decoded[1])
	}

	buf.Reset()
	if err := writeStatusJSON(buf, nil); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty json = %q", buf.String())
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		item core.Item
		want string
	}{
		{core.Item{IsRunning: true, IsActive: true}, "running"},
		{core.Item{IsActive: true}, "active"},
		{core.Item{IsEnabled: true}, "stopped"},
		{core.Item{}, "disabled"},
	}
	for _, tt := range tests {
		if got := stateOf(tt.item); got != tt.want {
			t.Errorf("stateOf(%+v) = %q, want %q", tt.item, got, tt.want)
		}
	}
}

func TestWriteDelta(t *testing.T) {
	buf := &bytes.Buffer{}
	writeDelta(buf, watch.Delta{
		Added:   []watch.Entry{{Section: core.SectionDocker, Item: core.Item{ID: "abc", Names: []string{"web"}, IsRunning: true}}},
		Updated: []watch.Entry{{Section: core.SectionSystemd, Item: core.Item{ID: "cron.service", Name: "cron", IsEnabled: true}}},
		Removed: []watch.Key{{Section: core.SectionCron, ID: "@daily backup"}},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	for i, want := range []string{"+ docker", "~ systemd", "- cron"} {
		if !strings.HasPrefix(lines[i], want) {
			t.Errorf("line %d = %q, want prefix %q", i, lines[i], want)
		}
	}
	if !strings.Contains(lines[0], "web (abc)") || !strings.Contains(lines[0], "running") {
		t.Errorf("added line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "stopped") || !strings.HasSuffix(lines[1], "cron") {
		t.Errorf("updated line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "gone") {
		t.Errorf("removed line = %q", lines[2])
	}
}
