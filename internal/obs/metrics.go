package obs

import (
	"sync/atomic"
	"time"

	"bondtrading/internal/bus"
	"bondtrading/internal/schema"
)

const (
	eventTypeCount = int(schema.MaxEventType) + 1
	eventKindCount = int(schema.EventKindUpdate) + 1
)

// Metrics collects pipeline counters and per-record latency.
type Metrics struct {
	eventCounts    [eventTypeCount][eventKindCount]uint64
	publishCounts  [eventTypeCount]uint64
	throttleDrops  uint64
	recordFailures uint64
	riskBreaches   uint64

	recordLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// EventCount is the number of notifications of each kind for one stream.
type EventCount struct {
	Adds    uint64
	Removes uint64
	Updates uint64
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Events         map[schema.EventType]EventCount
	Published      map[schema.EventType]uint64
	ThrottleDrops  uint64
	RecordFailures uint64
	RiskBreaches   uint64
	RecordLatency  LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// ObserveEvent counts a listener notification.
func (m *Metrics) ObserveEvent(t schema.EventType, kind schema.EventKind) {
	if m == nil {
		return
	}
	ti, ki := int(t), int(kind)
	if ti < 0 || ti >= eventTypeCount || ki <= 0 || ki >= eventKindCount {
		return
	}
	atomic.AddUint64(&m.eventCounts[ti][ki], 1)
}

// IncPublished counts a record handed to an egress connector.
func (m *Metrics) IncPublished(t schema.EventType) {
	if m == nil {
		return
	}
	if idx := int(t); idx >= 0 && idx < eventTypeCount {
		atomic.AddUint64(&m.publishCounts[idx], 1)
	}
}

// IncThrottleDrop records an update dropped by a throttle.
func (m *Metrics) IncThrottleDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.throttleDrops, 1)
}

// IncRecordFailure records an input record whose processing failed.
func (m *Metrics) IncRecordFailure() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.recordFailures, 1)
}

// IncRiskBreach records a PV01 limit breach.
func (m *Metrics) IncRiskBreach() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.riskBreaches, 1)
}

// ObserveRecord measures the end-to-end processing time of one input record.
func (m *Metrics) ObserveRecord(d time.Duration) {
	if m == nil {
		return
	}
	m.recordLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	events := make(map[schema.EventType]EventCount)
	published := make(map[schema.EventType]uint64)
	for i := 0; i < eventTypeCount; i++ {
		c := EventCount{
			Adds:    atomic.LoadUint64(&m.eventCounts[i][schema.EventKindAdd]),
			Removes: atomic.LoadUint64(&m.eventCounts[i][schema.EventKindRemove]),
			Updates: atomic.LoadUint64(&m.eventCounts[i][schema.EventKindUpdate]),
		}
		if c != (EventCount{}) {
			events[schema.EventType(i)] = c
		}
		if v := atomic.LoadUint64(&m.publishCounts[i]); v > 0 {
			published[schema.EventType(i)] = v
		}
	}
	return Snapshot{
		Events:         events,
		Published:      published,
		ThrottleDrops:  atomic.LoadUint64(&m.throttleDrops),
		RecordFailures: atomic.LoadUint64(&m.recordFailures),
		RiskBreaches:   atomic.LoadUint64(&m.riskBreaches),
		RecordLatency:  m.recordLatency.Snapshot(),
	}
}

// Listener returns a listener that counts every notification of a stream.
func Listener[V any](m *Metrics, t schema.EventType) bus.Listener[V] {
	count := func(kind schema.EventKind) func(V) error {
		return func(V) error {
			m.ObserveEvent(t, kind)
			return nil
		}
	}
	return bus.ListenerFuncs[V]{
		OnAdd:    count(schema.EventKindAdd),
		OnRemove: count(schema.EventKindRemove),
		OnUpdate: count(schema.EventKindUpdate),
	}
}

// Connector wraps an egress connector and counts successful publishes.
func Connector[V any](m *Metrics, t schema.EventType, next bus.Connector[V]) bus.Connector[V] {
	return bus.ConnectorFunc[V](func(v V) error {
		if err := next.Publish(v); err != nil {
			return err
		}
		m.IncPublished(t)
		return nil
	})
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		cur := atomic.LoadUint64(&l.min)
		if cur != 0 && nanos >= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, cur, nanos) {
			break
		}
	}
	for {
		cur := atomic.LoadUint64(&l.max)
		if nanos <= cur {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, cur, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(atomic.LoadUint64(&l.min)),
		Max:   time.Duration(atomic.LoadUint64(&l.max)),
		Avg:   time.Duration(atomic.LoadUint64(&l.sum) / count),
	}
}
