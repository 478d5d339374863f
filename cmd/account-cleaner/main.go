package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/cleaner"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/config"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/credentials"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/directory"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/schedule"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/telemetry"
	"github.com/microsoft/woodgrove-groceries-clean-up/pkg/throttle"
)

// app holds everything a command needs after bootstrap.
type app struct {
	cfg  *config.Config
	log  *logrus.Logger
	orch *cleaner.Orchestrator
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Fatal("account-cleaner failed")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "account-cleaner",
		Short:         "Deletes dormant accounts from Microsoft Entra ID",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newScheduleCmd())
	return root
}

// newRunCmd triggers a single cleanup run on demand.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one cleanup run and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}
			a.orch.Run(cmd.Context(), time.Now())
			return nil
		},
	}
}

// newScheduleCmd runs the cleanup on the configured cron schedule until the
// process is signalled.
func newScheduleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run the cleanup on the configured schedule (default daily at 09:30)",
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := setup()
			if err != nil {
				return err
			}

			sched, err := schedule.New(a.cfg.Schedule, func() {
				a.orch.Run(context.Background(), time.Now())
			}, a.log)
			if err != nil {
				return err
			}

			sched.Start()
			defer sched.Stop()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
			sig := <-stop
			a.log.WithField("signal", sig.String()).Info("Shutting down")
			return nil
		},
	}
}

// setup loads and validates configuration, resolves the credential, and
// wires the orchestrator. Any failure here is fatal: the run is abandoned
// before a single directory call is made.
func setup() (*app, error) {
	// A .env file is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := newLogger(cfg)

	cred, err := credentials.ForConfig(cfg).Resolve(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "resolve credential")
	}
	client, err := directory.NewGraphClient(cred)
	if err != nil {
		return nil, err
	}

	dir := directory.NewGraph(client)
	events := telemetry.NewLogEvents(log)
	orch := cleaner.New(dir, cfg, throttle.Default(), log, events)
	return &app{cfg: cfg, log: log, orch: orch}, nil
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
