package cleaner

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/config"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/directory"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/telemetry"
	"github.com/microsoft/woodgrove-groceries-clean-up/pkg/stats"
	"github.com/microsoft/woodgrove-groceries-clean-up/pkg/throttle"
)

// Orchestrator sequences one cleanup run: exclusions, scan, delete. Runs
// share nothing; each recomputes the cutoff, the protected set, and the
// candidate list from scratch.
type Orchestrator struct {
	dir    directory.Directory
	cfg    *config.Config
	policy throttle.Policy
	log    logrus.FieldLogger
	events telemetry.Events
}

func New(dir directory.Directory, cfg *config.Config, policy throttle.Policy, log logrus.FieldLogger, events telemetry.Events) *Orchestrator {
	return &Orchestrator{dir: dir, cfg: cfg, policy: policy, log: log, events: events}
}

// Run executes one cleanup run and returns its summary. Internal soft
// failures are logged and counted, never raised; the run is not retried.
func (o *Orchestrator) Run(ctx context.Context, now time.Time) *stats.RunStats {
	runID := uuid.NewString()
	log := o.log.WithField("run_id", runID)
	log.Info("Cleanup run starting")

	summary := &stats.RunStats{}

	builder := NewExclusionSetBuilder(o.dir, log)
	protected, groupWarnings := builder.Build(ctx, o.cfg.SafeListGroupIDs())
	summary.ProtectedAccounts = len(protected)
	summary.GroupsFailed = len(groupWarnings)

	scanner := NewScanner(o.dir, o.policy, log, o.events)
	scan := scanner.Scan(ctx, protected, now)
	summary.Candidates = len(scan.Candidates)
	summary.SkippedProtected = scan.Skipped

	deleter := NewBatchDeleter(o.dir, o.policy, o.cfg.DryRun, log, o.events)
	deletion := deleter.DeleteAll(ctx, scan.Candidates)
	summary.Batches = deletion.Batches
	summary.FailedBatches = deletion.FailedBatches
	summary.QueuedDeletions = deletion.QueuedDeletions
	summary.FailedOperations = deletion.FailedOperations

	summary.Warnings = len(groupWarnings) + len(scan.Warnings) + len(deletion.Warnings)
	summary.LogSummary(log)
	return summary
}
