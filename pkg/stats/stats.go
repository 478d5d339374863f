package stats

import "github.com/sirupsen/logrus"

// RunStats tracks the counts of one cleanup run. Nothing here is persisted;
// the summary is surfaced through logs at the end of the run.
type RunStats struct {
	ProtectedAccounts int
	GroupsFailed      int
	Candidates        int
	SkippedProtected  int
	Batches           int
	FailedBatches     int
	QueuedDeletions   int
	FailedOperations  int
	Warnings          int
}

// LogSummary displays the run summary
func (s *RunStats) LogSummary(log logrus.FieldLogger) {
	log.WithFields(logrus.Fields{
		"protected_accounts": s.ProtectedAccounts,
		"groups_failed":      s.GroupsFailed,
		"candidates":         s.Candidates,
		"skipped_protected":  s.SkippedProtected,
		"batches":            s.Batches,
		"failed_batches":     s.FailedBatches,
		"queued_deletions":   s.QueuedDeletions,
		"failed_operations":  s.FailedOperations,
		"warnings":           s.Warnings,
	}).Info("Cleanup run summary")
}
