// Package cleaner implements the dormant-account reconciliation workflow:
// accumulate the protected set from the safe-list groups, scan the paginated
// dormant-account listing, and delete the remaining accounts in paced
// batches. Every phase recovers from backend errors locally; a partial
// cleanup is preferable to none.
package cleaner

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/directory"
)

// ProtectedSet holds the account ids that must never be deleted. It is built
// once per run and not mutated once scanning begins.
type ProtectedSet map[string]struct{}

func (s ProtectedSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// add reports whether the id was newly added.
func (s ProtectedSet) add(id string) bool {
	if _, ok := s[id]; ok {
		return false
	}
	s[id] = struct{}{}
	return true
}

// Warning is a recovered, non-fatal failure from one phase of the run.
type Warning struct {
	Op  string
	Ref string
	Err error
}

func (w Warning) String() string {
	if w.Ref == "" {
		return fmt.Sprintf("%s: %v", w.Op, w.Err)
	}
	return fmt.Sprintf("%s %s: %v", w.Op, w.Ref, w.Err)
}

// ExclusionSetBuilder accumulates the protected set from group memberships.
type ExclusionSetBuilder struct {
	dir directory.Directory
	log logrus.FieldLogger
}

func NewExclusionSetBuilder(dir directory.Directory, log logrus.FieldLogger) *ExclusionSetBuilder {
	return &ExclusionSetBuilder{dir: dir, log: log}
}

// Build unions the members of each configured group into one deduplicated
// set. Empty group ids are skipped. A group whose retrieval fails
// contributes no further members but never discards what earlier groups (or
// its own earlier pages) already added.
func (b *ExclusionSetBuilder) Build(ctx context.Context, groupIDs []string) (ProtectedSet, []Warning) {
	protected := make(ProtectedSet)
	var warnings []Warning

	for _, groupID := range groupIDs {
		if groupID == "" {
			continue
		}
		added, err := b.collectGroup(ctx, groupID, protected)
		if err != nil {
			b.log.WithError(err).WithField("group_id", groupID).
				Error("Resolving group membership failed; continuing without this group")
			warnings = append(warnings, Warning{Op: "resolve group", Ref: groupID, Err: err})
			continue
		}
		b.log.WithFields(logrus.Fields{"group_id": groupID, "added": added}).
			Info("Accumulated protected accounts from group")
	}
	return protected, warnings
}

func (b *ExclusionSetBuilder) collectGroup(ctx context.Context, groupID string, protected ProtectedSet) (int, error) {
	pager := b.dir.GroupMembers(groupID)
	added := 0
	for {
		members, more, err := pager.Next(ctx)
		if err != nil {
			return added, err
		}
		for _, member := range members {
			if protected.add(member.ID) {
				added++
			}
		}
		if !more {
			return added, nil
		}
	}
}
