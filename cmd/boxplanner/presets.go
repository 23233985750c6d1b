package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/boxplanner/internal/config"
	"github.com/piwi3910/boxplanner/internal/model"
	"github.com/piwi3910/boxplanner/internal/project"
)

type presetFlags struct {
	save        string
	from        string
	description string
	remove      string
}

func presetsCmd(_ config.Config) *cobra.Command {
	var f presetFlags
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "List presets or save a project as a preset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPresets(cmd.OutOrStdout(), f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.save, "save", "", "save the configuration of --project as a preset with this name")
	fs.StringVar(&f.from, "project", "", "project file to save as a preset")
	fs.StringVar(&f.description, "description", "", "preset description")
	fs.StringVar(&f.remove, "remove", "", "remove a user preset by ID")
	cmd.MarkFlagsRequiredTogether("save", "project")
	cmd.MarkFlagsMutuallyExclusive("save", "remove")
	return cmd
}

func runPresets(w io.Writer, f presetFlags) error {
	path := project.DefaultPresetPath()

	switch {
	case f.save != "":
		proj, err := project.LoadProject(f.from)
		if err != nil {
			return err
		}
		p, err := project.SavePreset(path, f.save, f.description, proj.Config)
		if err != nil {
			return err
		}
		log.Info().Str("id", p.ID).Str("name", p.Name).Msg("preset saved")
		return nil

	case f.remove != "":
		store, err := project.LoadPresets(path)
		if err != nil {
			return err
		}
		if !store.Remove(f.remove) {
			return fmt.Errorf("user preset %q not found", f.remove)
		}
		return project.SavePresets(path, store)
	}

	store, err := project.LoadPresets(path)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tName\tHall\tMix\tDescription")
	for _, p := range append(model.BuiltInPresets(), store.Presets...) {
		c := p.Config
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d/%d/%d\t%s\n", p.ID, p.Name, c.Hall.Shape,
			c.SmallPercent, c.MediumPercent, c.LargePercent, p.Description)
	}
	return tw.Flush()
}
