package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/boxplanner/internal/config"
	"github.com/piwi3910/boxplanner/internal/model"
	"github.com/piwi3910/boxplanner/internal/planner"
	"github.com/piwi3910/boxplanner/internal/project"
	"github.com/piwi3910/boxplanner/internal/server"
)

func serveCmd(cfg config.Config) *cobra.Command {
	var (
		projectPath string
		seed        int64
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runServe(cfg, projectPath, seed)
		},
	}

	cmd.Flags().StringVar(&projectPath, "project", "", "project file to start from")
	cmd.Flags().Int64Var(&seed, "seed", 0, "layout seed; 0 draws a new layout on every plan")
	return cmd
}

func runServe(cfg config.Config, projectPath string, seed int64) error {
	proj := model.NewProject()
	if projectPath != "" {
		var err error
		if proj, err = project.LoadProject(projectPath); err != nil {
			return err
		}
	} else {
		appCfg, err := project.LoadAppConfig(cfg.AppConfigPath)
		if err != nil {
			return err
		}
		appCfg.ApplyToConfiguration(&proj.Config)
	}
	if seed != 0 {
		proj.Seed = seed
	}

	svc, cleanup := analysisOptions(cfg, log.Logger)
	defer cleanup()
	p := planner.FromProject(proj, append(svc, planner.WithLogger(log.Logger))...)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	api := server.New(p, server.Options{
		ProjectName:     proj.Name,
		AllowedOrigin:   cfg.AllowedOrigin,
		AnalysisTimeout: cfg.AnalysisTimeout,
		PresetPath:      project.DefaultPresetPath(),
		Seed:            proj.Seed,
		Logger:          log.Logger,
	})

	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      api.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.AnalysisTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case <-quit:
	}
	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
