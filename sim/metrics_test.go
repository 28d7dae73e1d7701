package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracker_AverageLatency_EmptyReturnsZero(t *testing.T) {
	tr := NewTracker()

	assert.Equal(t, 0.0, tr.AverageLatency())
}

func TestTracker_RecordCreationThenReceipt_ComputesLatency(t *testing.T) {
	// GIVEN a packet created at cycle 10
	tr := NewTracker()
	tr.RecordCreation(1, 10)

	// WHEN it is received at cycle 25
	tr.RecordReceipt(1, 25)

	// THEN its latency (15) is reflected in the average and completed count
	assert.Equal(t, 15.0, tr.AverageLatency())
	assert.Equal(t, 1, tr.CompletedCount())
}

func TestTracker_RecordReceipt_UnknownPacketID_Ignored(t *testing.T) {
	// GIVEN a tracker with no recorded creation for packet 42
	tr := NewTracker()

	// WHEN RecordReceipt is called for packet 42
	tr.RecordReceipt(42, 5)

	// THEN nothing is recorded
	assert.Equal(t, 0, tr.CompletedCount(), "unknown packet id")
}

func TestTracker_Throughput_DividesByTotalCycles(t *testing.T) {
	tr := NewTracker()
	tr.RecordCreation(1, 0)
	tr.RecordReceipt(1, 0)
	tr.RecordCreation(2, 0)
	tr.RecordReceipt(2, 0)

	assert.Equal(t, 2.0/100.0, tr.Throughput(100, 4))
}

func TestTracker_LatencyPercentiles_EmptyReturnsZeros(t *testing.T) {
	tr := NewTracker()

	p50, p99, stddev := tr.LatencyPercentiles()
	assert.Zero(t, p50)
	assert.Zero(t, p99)
	assert.Zero(t, stddev)
}

func TestTracker_LatencyPercentiles_SingleSample_StdDevIsZeroNotNaN(t *testing.T) {
	// gonum/stat.StdDev divides by n-1; guard against NaN on a single sample
	tr := NewTracker()
	tr.RecordCreation(1, 0)
	tr.RecordReceipt(1, 10)

	_, _, stddev := tr.LatencyPercentiles()
	assert.Zero(t, stddev)
}

func TestTracker_LatencyPercentiles_NonEmpty(t *testing.T) {
	tr := NewTracker()
	for i, latency := range []int64{10, 20, 30, 40, 50} {
		id := uint64(i)
		tr.RecordCreation(id, 0)
		tr.RecordReceipt(id, latency)
	}

	p50, p99, stddev := tr.LatencyPercentiles()
	assert.Positive(t, p50)
	assert.Positive(t, p99)
	assert.Positive(t, stddev)
	assert.GreaterOrEqual(t, p99, p50)
}
