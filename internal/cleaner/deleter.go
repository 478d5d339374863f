package cleaner

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/directory"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/telemetry"
	"github.com/microsoft/woodgrove-groceries-clean-up/pkg/throttle"
)

// DeleteResult is the outcome of submitting all deletion candidates.
type DeleteResult struct {
	// QueuedDeletions counts operations in batches that were accepted by the
	// backend (or would have been, in dry-run mode).
	QueuedDeletions int
	Batches         int
	FailedBatches   int
	// FailedOperations counts non-success statuses inside otherwise
	// successful batches. They are surfaced, not retried.
	FailedOperations int
	Warnings         []Warning
}

// BatchDeleter partitions candidates into fixed-size batches and submits
// each as one combined request. Each batch is an independent unit of work; a
// failed submission never aborts the remaining batches.
type BatchDeleter struct {
	dir    directory.Directory
	policy throttle.Policy
	dryRun bool
	log    logrus.FieldLogger
	events telemetry.Events
}

func NewBatchDeleter(dir directory.Directory, policy throttle.Policy, dryRun bool, log logrus.FieldLogger, events telemetry.Events) *BatchDeleter {
	return &BatchDeleter{dir: dir, policy: policy, dryRun: dryRun, log: log, events: events}
}

// DeleteAll deletes the candidates best-effort. Batch submissions are paced
// by the policy.
func (d *BatchDeleter) DeleteAll(ctx context.Context, accounts []directory.Account) DeleteResult {
	var result DeleteResult
	size := d.policy.BatchSize
	if size <= 0 || size > directory.MaxBatchSize {
		size = directory.MaxBatchSize
	}

	for start := 0; start < len(accounts); start += size {
		end := start + size
		if end > len(accounts) {
			end = len(accounts)
		}
		d.policy.Pace()
		d.submitBatch(ctx, accounts[start:end], &result)
	}
	return result
}

func (d *BatchDeleter) submitBatch(ctx context.Context, accounts []directory.Account, result *DeleteResult) {
	result.Batches++

	ops := make([]directory.DeleteOperation, 0, len(accounts))
	for _, account := range accounts {
		ops = append(ops, directory.DeleteOperation{
			CorrelationID: uuid.NewString(),
			AccountID:     account.ID,
		})
	}

	if d.dryRun {
		result.QueuedDeletions += len(ops)
		d.log.WithField("operations", len(ops)).Info("[DRY RUN] Would submit delete batch")
		return
	}

	outcome, err := d.dir.DeleteAccounts(ctx, ops)
	if err != nil {
		result.FailedBatches++
		result.Warnings = append(result.Warnings, Warning{Op: "submit batch", Err: err})
		d.log.WithError(err).WithField("operations", len(ops)).
			Error("Delete batch failed; continuing with remaining batches")
		return
	}

	result.QueuedDeletions += len(ops)
	for _, op := range ops {
		d.log.WithField("user_id", op.AccountID).Info("Queued account deletion")
		d.events.Track(telemetry.EventUserDeleted, map[string]string{"userId": op.AccountID})
	}

	for _, correlationID := range outcome.Failed() {
		result.FailedOperations++
		d.log.WithFields(logrus.Fields{
			"correlation_id": correlationID,
			"status":         outcome.Statuses[correlationID],
		}).Warn("Delete operation returned a non-success status")
	}
}
