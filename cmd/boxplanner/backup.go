package main

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/boxplanner/internal/config"
	"github.com/piwi3910/boxplanner/internal/project"
)

func backupCmd(cfg config.Config) *cobra.Command {
	var exportPath, importPath string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export or import app config and user presets",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBackup(cfg, exportPath, importPath)
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write app config and user presets to this file")
	cmd.Flags().StringVar(&importPath, "import", "", "restore app config and user presets from this file")
	cmd.MarkFlagsMutuallyExclusive("export", "import")
	cmd.MarkFlagsOneRequired("export", "import")
	return cmd
}

func runBackup(cfg config.Config, exportPath, importPath string) error {
	switch {
	case exportPath != "":
		appCfg, err := project.LoadAppConfig(cfg.AppConfigPath)
		if err != nil {
			return err
		}
		presets, err := project.LoadPresets(project.DefaultPresetPath())
		if err != nil {
			return err
		}
		if err := project.ExportAllData(exportPath, appCfg, presets); err != nil {
			return err
		}
		log.Info().Str("path", exportPath).Int("presets", len(presets.Presets)).Msg("backup written")
	case importPath != "":
		backup, err := project.RestoreAllData(importPath, cfg.AppConfigPath, project.DefaultPresetPath())
		if err != nil {
			return err
		}
		log.Info().Str("created_at", backup.CreatedAt).Int("presets", len(backup.Presets.Presets)).Msg("backup restored")
	default:
		return errors.New("backup needs --export or --import")
	}
	return nil
}
