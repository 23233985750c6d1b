package project

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/piwi3910/boxplanner/internal/model"
)

// backupVersion is written to every backup file.
const backupVersion = "1.0.0"

// BackupData is the top-level structure for import/export of all application data.
type BackupData struct {
	Version   string            `json:"version"`
	CreatedAt string            `json:"created_at"`
	Config    model.AppConfig   `json:"config"`
	Presets   model.PresetStore `json:"presets"`
}

// ExportAllData exports the app config and the user presets to a single JSON
// file at the specified path.
func ExportAllData(exportPath string, config model.AppConfig, presets model.PresetStore) error {
	backup := BackupData{
		Version:   backupVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Presets:   presets,
	}
	if err := writeJSON(exportPath, backup); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	return nil
}

// ImportAllData reads a backup JSON file and returns the contained data.
// The caller is responsible for applying the imported config.
func ImportAllData(importPath string) (BackupData, error) {
	data, err := os.ReadFile(importPath)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: missing version field")
	}
	// Ensure slices are never nil
	if backup.Config.RecentProjects == nil {
		backup.Config.RecentProjects = []string{}
	}
	if backup.Presets.Presets == nil {
		backup.Presets.Presets = []model.Preset{}
	}
	return backup, nil
}

// RestoreAllData writes the contents of a backup file to the given config and
// preset paths. User presets are merged: presets with an ID already in the
// store are replaced.
func RestoreAllData(importPath, configPath, presetPath string) (BackupData, error) {
	backup, err := ImportAllData(importPath)
	if err != nil {
		return BackupData{}, err
	}
	if err := SaveAppConfig(configPath, backup.Config); err != nil {
		return BackupData{}, fmt.Errorf("restore config: %w", err)
	}

	store, err := LoadPresets(presetPath)
	if err != nil {
		return BackupData{}, err
	}
	for _, p := range backup.Presets.Presets {
		store.Remove(p.ID)
		store.Add(p)
	}
	if err := SavePresets(presetPath, store); err != nil {
		return BackupData{}, fmt.Errorf("restore presets: %w", err)
	}
	return backup, nil
}
