package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piwi3910/boxplanner/internal/config"
	"github.com/piwi3910/boxplanner/internal/project"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return config.Config{AppConfigPath: filepath.Join(home, "config.json")}
}

func execute(cfg config.Config, args ...string) (string, error) {
	var out bytes.Buffer
	root := rootCmd(cfg)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPresetsListsBuiltIns(t *testing.T) {
	out, err := execute(testConfig(t), "presets")
	require.NoError(t, err)
	assert.Contains(t, out, "rect-600")
	assert.Contains(t, out, "custom-1200")
}

func TestPresetsSaveNeedsProject(t *testing.T) {
	_, err := execute(testConfig(t), "presets", "--save", "mine")
	assert.Error(t, err)
}

func TestPlanRejectsProjectAndPreset(t *testing.T) {
	_, err := execute(testConfig(t), "plan", "--project", "a.json", "--preset", "rect-600")
	assert.Error(t, err)
}

func TestPlanWritesExports(t *testing.T) {
	cfg := testConfig(t)
	dir := t.TempDir()
	xlsx := filepath.Join(dir, "plan.xlsx")
	saved := filepath.Join(dir, "hall"+project.ProjectExt)

	_, err := execute(cfg, "plan", "--preset", "rect-600", "--seed", "7", "--cashflow", "--xlsx", xlsx, "--save", saved)
	require.NoError(t, err)

	assert.FileExists(t, xlsx)
	proj, err := project.LoadProject(saved)
	require.NoError(t, err)
	assert.Equal(t, int64(7), proj.Seed)
}

func TestBackupFlags(t *testing.T) {
	cfg := testConfig(t)

	_, err := execute(cfg, "backup")
	assert.Error(t, err, "one of --export or --import is required")

	path := filepath.Join(t.TempDir(), "backup.json")
	_, err = execute(cfg, "backup", "--export", path, "--import", path)
	assert.Error(t, err)

	_, err = execute(cfg, "backup", "--export", path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	assert.NoError(t, err)
}
