// Implements the metrics tracker: per-packet creation time bookkeeping and
// the completed-latency list spec.md §6 defines average latency and
// throughput over. Percentile/stddev reporting is ambient enrichment (see
// SPEC_FULL.md §6) built on gonum/stat rather than hand-rolled.

package sim

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Tracker records packet creation and completion times and derives
// latency/throughput statistics from them.
type Tracker struct {
	creation  map[uint64]int64
	latencies []int64
}

// NewTracker returns an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{creation: make(map[uint64]int64)}
}

// RecordCreation notes the cycle a packet was created, keyed by packet id.
func (t *Tracker) RecordCreation(packetID uint64, cycle int64) {
	t.creation[packetID] = cycle
}

// RecordReceipt notes the cycle a packet's Last flit was received and
// appends its latency (receipt - creation) to the completed list. A
// packet id with no recorded creation is ignored (defensive: should not
// happen given every packet is created before it can be received).
func (t *Tracker) RecordReceipt(packetID uint64, cycle int64) {
	creation, ok := t.creation[packetID]
	if !ok {
		return
	}
	t.latencies = append(t.latencies, cycle-creation)
	delete(t.creation, packetID)
}

// AverageLatency returns the mean of completed latencies, or 0 if none
// have completed (spec.md §6).
func (t *Tracker) AverageLatency() float64 {
	if len(t.latencies) == 0 {
		return 0.0
	}
	var sum int64
	for _, l := range t.latencies {
		sum += l
	}
	return float64(sum) / float64(len(t.latencies))
}

// Throughput returns completed-packet count divided by total cycles
// (spec.md §6).
func (t *Tracker) Throughput(numCycles int64, numNodes int) float64 {
	if numCycles == 0 || numNodes == 0 {
		return 0.0
	}
	return float64(len(t.latencies)) / float64(numCycles)
}

// CompletedCount returns the number of packets whose latency has been
// recorded — equal to the number of TAIL/last-flit ejections (spec.md §8
// invariant 2).
func (t *Tracker) CompletedCount() int { return len(t.latencies) }

// LatencyPercentiles reports P50/P99 and the standard deviation of
// completed latencies, using gonum/stat's quantile/stddev implementations
// rather than a hand-rolled nearest-rank routine. Returns zeros when no
// packet has completed.
func (t *Tracker) LatencyPercentiles() (p50, p99, stddev float64) {
	if len(t.latencies) == 0 {
		return 0, 0, 0
	}
	sorted := make([]float64, len(t.latencies))
	for i, l := range t.latencies {
		sorted[i] = float64(l)
	}
	sort.Float64s(sorted)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p99 = stat.Quantile(0.99, stat.Empirical, sorted, nil)
	if len(sorted) >= 2 {
		stddev = stat.StdDev(sorted, nil)
	}
	return p50, p99, stddev
}
