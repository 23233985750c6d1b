package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Preset is a reusable, named configuration. It never carries results.
type Preset struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	CreatedAt   string        `json:"created_at"`
	BuiltIn     bool          `json:"built_in,omitempty"`
	Config      Configuration `json:"config"`
}

// NewPreset captures cfg under a new ID.
func NewPreset(name, description string, cfg Configuration) Preset {
	return Preset{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Config:      cfg,
	}
}

// ToProject creates a new Project from this preset.
func (p Preset) ToProject(projectName string) Project {
	proj := NewProject()
	proj.Name = projectName
	proj.Config = p.Config
	return proj
}

// BuiltInPresets returns the presets shipped with the application.
func BuiltInPresets() []Preset {
	rect := DefaultConfiguration()

	lshape := DefaultConfiguration()
	lshape.Hall.Shape = ShapeLShape
	lshape.Options.Gate = true

	custom := DefaultConfiguration()
	custom.Hall.Shape = ShapeCustom
	custom.Hall.TotalArea = 1200
	custom.SmallPercent, custom.MediumPercent, custom.LargePercent = 40, 35, 25
	custom.Options.RollerDoors = true
	custom.Options.Soffit = true

	return []Preset{
		{ID: "rect-600", Name: "Rectangle 30x20", Description: "600 m² rectangular hall, 50/30/20 mix", BuiltIn: true, Config: rect},
		{ID: "lshape", Name: "L-shaped hall", Description: "Two arms 20x10 and 15x10 with entry gate", BuiltIn: true, Config: lshape},
		{ID: "custom-1200", Name: "Custom 1200 m²", Description: "Free-form hall with roller doors on large boxes", BuiltIn: true, Config: custom},
	}
}

// PresetStore holds a collection of user presets.
type PresetStore struct {
	Presets []Preset `json:"presets"`
}

// NewPresetStore creates an empty preset store.
func NewPresetStore() PresetStore {
	return PresetStore{
		Presets: []Preset{},
	}
}

// Add adds a preset to the store.
func (ps *PresetStore) Add(p Preset) {
	ps.Presets = append(ps.Presets, p)
}

// Remove removes a preset by ID. Returns true if found and removed.
func (ps *PresetStore) Remove(id string) bool {
	for i, p := range ps.Presets {
		if p.ID == id {
			ps.Presets = append(ps.Presets[:i], ps.Presets[i+1:]...)
			return true
		}
	}
	return false
}

// FindByID returns a pointer to the preset with the given ID, or nil.
func (ps *PresetStore) FindByID(id string) *Preset {
	for i := range ps.Presets {
		if ps.Presets[i].ID == id {
			return &ps.Presets[i]
		}
	}
	return nil
}

// Names returns the preset names in store order.
func (ps *PresetStore) Names() []string {
	names := make([]string, len(ps.Presets))
	for i, p := range ps.Presets {
		names[i] = p.Name
	}
	return names
}

// Lookup finds a preset by ID or case-insensitive name, searching the store
// first and the built-in presets after.
func (ps *PresetStore) Lookup(key string) (Preset, bool) {
	all := append(append([]Preset{}, ps.Presets...), BuiltInPresets()...)
	for _, p := range all {
		if p.ID == key || strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return Preset{}, false
}
