package cleaner

import (
	"context"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/directory"
	"github.com/microsoft/woodgrove-groceries-clean-up/internal/telemetry"
	"github.com/microsoft/woodgrove-groceries-clean-up/pkg/throttle"
)

// dormancyWindow is the trailing window without sign-in activity after
// which an account is considered dormant.
const dormancyWindow = 30 * 24 * time.Hour

// ScanResult is the outcome of one dormant-account scan. Candidates keeps
// the backend's enumeration order.
type ScanResult struct {
	Candidates []directory.Account
	Skipped    int
	Warnings   []Warning
}

// DormantAccountScanner walks the paginated dormant-account listing and
// partitions it against the protected set.
type DormantAccountScanner struct {
	dir    directory.Directory
	policy throttle.Policy
	log    logrus.FieldLogger
	events telemetry.Events
}

func NewScanner(dir directory.Directory, policy throttle.Policy, log logrus.FieldLogger, events telemetry.Events) *DormantAccountScanner {
	return &DormantAccountScanner{dir: dir, policy: policy, log: log, events: events}
}

// Scan computes the cutoff once from now, then consumes the full paginated
// result. A page failure stops the scan early but keeps everything
// accumulated so far. Page fetches are paced by the policy.
func (s *DormantAccountScanner) Scan(ctx context.Context, protected ProtectedSet, now time.Time) ScanResult {
	cutoff := now.UTC().Add(-dormancyWindow)
	s.log.WithField("cutoff", cutoff.Format(time.RFC3339)).Info("Scanning for dormant accounts")

	var result ScanResult
	pager := s.dir.DormantUsers(cutoff)
	for {
		s.policy.Pace()
		accounts, more, err := pager.Next(ctx)
		if err != nil {
			s.log.WithError(err).Error("Listing dormant accounts failed; keeping partial scan results")
			result.Warnings = append(result.Warnings, Warning{Op: "scan page", Err: err})
			break
		}
		for _, account := range accounts {
			if protected.Contains(account.ID) {
				result.Skipped++
				continue
			}
			result.Candidates = append(result.Candidates, account)
		}
		if !more {
			break
		}
	}

	s.events.Track(telemetry.EventSearchCompleted, map[string]string{
		"delete": strconv.Itoa(len(result.Candidates)),
		"skip":   strconv.Itoa(result.Skipped),
	})
	return result
}
