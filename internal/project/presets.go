package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/boxplanner/internal/model"
)

// DefaultPresetPath returns the default file path for the user preset store.
// This is located at ~/.boxplanner/presets.json.
func DefaultPresetPath() string {
	return filepath.Join(DefaultConfigDir(), "presets.json")
}

// SavePresets writes the preset store to a JSON file.
func SavePresets(path string, store model.PresetStore) error {
	return writeJSON(path, store)
}

// LoadPresets reads a preset store from a JSON file.
// If the file does not exist, returns an empty store.
func LoadPresets(path string) (model.PresetStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewPresetStore(), nil
		}
		return model.PresetStore{}, err
	}
	var store model.PresetStore
	if err := json.Unmarshal(data, &store); err != nil {
		return model.PresetStore{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if store.Presets == nil {
		store.Presets = []model.Preset{}
	}
	return store, nil
}

// SavePreset appends cfg as a new user preset to the store at path.
func SavePreset(path, name, description string, cfg model.Configuration) (model.Preset, error) {
	store, err := LoadPresets(path)
	if err != nil {
		return model.Preset{}, err
	}
	p := model.NewPreset(name, description, cfg.Normalize())
	store.Add(p)
	if err := SavePresets(path, store); err != nil {
		return model.Preset{}, err
	}
	return p, nil
}
