package cleaner

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/woodgrove-groceries-clean-up/internal/telemetry"
	"github.com/microsoft/woodgrove-groceries-clean-up/pkg/throttle"
)

func newDeleter(dir *fakeDirectory, dryRun bool, events telemetry.Events) *BatchDeleter {
	logger, _ := test.NewNullLogger()
	return NewBatchDeleter(dir, throttle.Unlimited(20), dryRun, logger, events)
}

func TestDeleteAllBatchArithmetic(t *testing.T) {
	cases := []struct {
		n     int
		sizes []int
	}{
		{0, nil},
		{1, []int{1}},
		{19, []int{19}},
		{20, []int{20}},
		{21, []int{20, 1}},
		{40, []int{20, 20}},
		{45, []int{20, 20, 5}},
	}

	for _, tc := range cases {
		dir := &fakeDirectory{}
		result := newDeleter(dir, false, &telemetry.Capture{}).DeleteAll(context.Background(), accounts("u", tc.n))

		require.Len(t, dir.batches, len(tc.sizes), "n=%d", tc.n)
		for i, size := range tc.sizes {
			assert.Len(t, dir.batches[i], size, "n=%d batch=%d", tc.n, i)
		}
		assert.Equal(t, len(tc.sizes), result.Batches, "n=%d", tc.n)
		assert.Equal(t, tc.n, result.QueuedDeletions, "n=%d", tc.n)
	}
}

func TestDeleteAllContinuesAfterBatchFailure(t *testing.T) {
	dir := &fakeDirectory{failBatches: map[int]error{1: errors.New("throttled")}}
	events := &telemetry.Capture{}

	result := newDeleter(dir, false, events).DeleteAll(context.Background(), accounts("u", 45))

	// Batch 2 failed but batches 1 and 3 were still submitted.
	require.Len(t, dir.batches, 3)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 1, result.FailedBatches)
	assert.Equal(t, 25, result.QueuedDeletions)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 25, events.Count(telemetry.EventUserDeleted))
}

func TestDeleteAllCorrelationIDsAreUnique(t *testing.T) {
	dir := &fakeDirectory{}

	newDeleter(dir, false, &telemetry.Capture{}).DeleteAll(context.Background(), accounts("u", 45))

	seen := map[string]struct{}{}
	for _, batch := range dir.batches {
		for _, op := range batch {
			_, dup := seen[op.CorrelationID]
			assert.False(t, dup, op.CorrelationID)
			seen[op.CorrelationID] = struct{}{}
		}
	}
	assert.Len(t, seen, 45)
}

func TestDeleteAllEmitsEventPerQueuedDeletion(t *testing.T) {
	dir := &fakeDirectory{}
	events := &telemetry.Capture{}

	newDeleter(dir, false, events).DeleteAll(context.Background(), accounts("u", 3))

	require.Equal(t, 3, events.Count(telemetry.EventUserDeleted))
	assert.Equal(t, "u-0", events.Events[0].Props["userId"])
}

func TestDeleteAllSurfacesFailedOperations(t *testing.T) {
	dir := &fakeDirectory{statuses: map[string]int32{"u-1": 404}}

	result := newDeleter(dir, false, &telemetry.Capture{}).DeleteAll(context.Background(), accounts("u", 3))

	// The batch itself succeeded; the failed operation is counted, not retried.
	assert.Equal(t, 0, result.FailedBatches)
	assert.Equal(t, 1, result.FailedOperations)
	assert.Equal(t, 3, result.QueuedDeletions)
}

func TestDeleteAllDryRunSubmitsNothing(t *testing.T) {
	dir := &fakeDirectory{}
	events := &telemetry.Capture{}

	result := newDeleter(dir, true, events).DeleteAll(context.Background(), accounts("u", 25))

	assert.Empty(t, dir.batches)
	assert.Equal(t, 2, result.Batches)
	assert.Equal(t, 25, result.QueuedDeletions)
	assert.Zero(t, events.Count(telemetry.EventUserDeleted))
}

func TestDeleteAllPacesBetweenBatches(t *testing.T) {
	dir := &fakeDirectory{}
	logger, _ := test.NewNullLogger()
	deleter := NewBatchDeleter(dir, throttle.New(20, 40*time.Millisecond), false, logger, &telemetry.Capture{})

	start := time.Now()
	deleter.DeleteAll(context.Background(), accounts("u", 25))
	elapsed := time.Since(start)

	require.Len(t, dir.batches, 2)
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}
