// Package directory is the capability boundary to the Entra ID directory:
// listing dormant users, listing group members, and submitting batched
// deletions. The cleanup logic is written against the interfaces here and
// never imports the Graph SDK directly.
package directory

import (
	"context"
	"time"
)

// Account is a read-only snapshot of a directory user. Only the fields the
// cleanup needs are fetched.
type Account struct {
	ID          string
	DisplayName string
}

// DeleteOperation is one delete inside a combined batch request, tagged with
// a caller-chosen correlation id.
type DeleteOperation struct {
	CorrelationID string
	AccountID     string
}

// BatchOutcome carries the per-operation HTTP status of a submitted batch,
// keyed by correlation id. A successful batch can still contain failed
// operations.
type BatchOutcome struct {
	Statuses map[string]int32
}

// Failed returns the correlation ids of operations that did not report a
// 2xx status.
func (o *BatchOutcome) Failed() []string {
	var failed []string
	for id, status := range o.Statuses {
		if status < 200 || status >= 300 {
			failed = append(failed, id)
		}
	}
	return failed
}

// Pager walks one paginated directory result set. Next returns the next page
// of accounts and whether another page exists; implementations fetch lazily
// so callers control pacing between pages.
type Pager interface {
	Next(ctx context.Context) (accounts []Account, more bool, err error)
}

// Directory is the remote directory capability used by the cleanup run.
type Directory interface {
	// DormantUsers enumerates accounts whose last sign-in is at or before
	// the cutoff, in backend enumeration order.
	DormantUsers(cutoff time.Time) Pager
	// GroupMembers enumerates the members of one group.
	GroupMembers(groupID string) Pager
	// DeleteAccounts submits up to MaxBatchSize delete operations as one
	// combined request.
	DeleteAccounts(ctx context.Context, ops []DeleteOperation) (*BatchOutcome, error)
}

// MaxBatchSize is the backend's limit on operations per combined request.
const MaxBatchSize = 20
