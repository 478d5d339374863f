package cleaner

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/directory"
)

// pageSet describes a paginated result: pages in order, and an optional page
// index at which the fetch fails.
type pageSet struct {
	pages [][]directory.Account
	errAt int // page index that errors; -1 for none
}

func pagesOf(pages ...[]directory.Account) pageSet {
	return pageSet{pages: pages, errAt: -1}
}

type fakePager struct {
	set pageSet
	idx int
}

func (p *fakePager) Next(_ context.Context) ([]directory.Account, bool, error) {
	if p.set.errAt >= 0 && p.idx == p.set.errAt {
		return nil, false, errors.New("backend unavailable")
	}
	if p.idx >= len(p.set.pages) {
		return nil, false, nil
	}
	page := p.set.pages[p.idx]
	p.idx++
	more := p.idx < len(p.set.pages) || p.idx == p.set.errAt
	return page, more, nil
}

// fakeDirectory implements directory.Directory in memory. Unknown groups
// fail on the first page fetch.
type fakeDirectory struct {
	users       pageSet
	members     map[string]pageSet
	gotCutoff   time.Time
	batches     [][]directory.DeleteOperation
	failBatches map[int]error    // submission index -> error
	statuses    map[string]int32 // account id -> status, default 204
}

func (d *fakeDirectory) DormantUsers(cutoff time.Time) directory.Pager {
	d.gotCutoff = cutoff
	return &fakePager{set: d.users}
}

func (d *fakeDirectory) GroupMembers(groupID string) directory.Pager {
	set, ok := d.members[groupID]
	if !ok {
		set = pageSet{errAt: 0}
	}
	return &fakePager{set: set}
}

func (d *fakeDirectory) DeleteAccounts(_ context.Context, ops []directory.DeleteOperation) (*directory.BatchOutcome, error) {
	idx := len(d.batches)
	d.batches = append(d.batches, ops)
	if err, ok := d.failBatches[idx]; ok {
		return nil, err
	}
	outcome := &directory.BatchOutcome{Statuses: make(map[string]int32, len(ops))}
	for _, op := range ops {
		status := int32(204)
		if s, ok := d.statuses[op.AccountID]; ok {
			status = s
		}
		outcome.Statuses[op.CorrelationID] = status
	}
	return outcome, nil
}

func accounts(prefix string, n int) []directory.Account {
	out := make([]directory.Account, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, directory.Account{ID: fmt.Sprintf("%s-%d", prefix, i)})
	}
	return out
}
