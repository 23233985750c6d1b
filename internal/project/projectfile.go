package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/boxplanner/internal/model"
)

// ProjectExt is the file extension of saved projects.
const ProjectExt = ".boxplan.json"

// SaveProject writes the project input document to path.
func SaveProject(path string, proj model.Project) error {
	if err := writeJSON(path, proj); err != nil {
		return fmt.Errorf("save project: %w", err)
	}
	return nil
}

// LoadProject reads a project file. Anything the file leaves out keeps the
// value of model.NewProject, so a file holding only a hall is a valid project.
// The configuration is normalized on load; tier percentages are not checked
// here since that is a planning error, not a file error.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("read project: %w", err)
	}
	proj := model.NewProject()
	if err := json.Unmarshal(data, &proj); err != nil {
		return model.Project{}, fmt.Errorf("parse project %s: %w", path, err)
	}

	switch proj.Mode {
	case "":
		proj.Mode = model.ModeAuto
	case model.ModeAuto, model.ModeManual:
	default:
		return model.Project{}, fmt.Errorf("project %s: unknown mode %q", path, proj.Mode)
	}
	proj.Config = proj.Config.Normalize()
	return proj, nil
}
