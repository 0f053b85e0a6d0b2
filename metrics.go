package msgq

import "sync/atomic"

// MetricsSnapshot is a point-in-time copy of a queue's counters.
type MetricsSnapshot struct {
	Put       int64 `json:"put"`
	Delivered int64 `json:"delivered"`
	Timeouts  int64 `json:"timeouts"`
	Requests  int64 `json:"requests"`
	Responses int64 `json:"responses"`
	Dropped   int64 `json:"dropped"`
	Pending   int64 `json:"pending"`
}

// Metrics counts queue operations. The zero value is ready to use.
type Metrics struct {
	put       atomic.Int64
	delivered atomic.Int64
	timeouts  atomic.Int64
	requests  atomic.Int64
	responses atomic.Int64
	dropped   atomic.Int64
	pending   atomic.Int64
}

func (m *Metrics) recordPut()       { m.put.Add(1) }
func (m *Metrics) recordDelivered() { m.delivered.Add(1) }
func (m *Metrics) recordTimeout()   { m.timeouts.Add(1) }
func (m *Metrics) recordResponse()  { m.responses.Add(1) }
func (m *Metrics) recordDropped()   { m.dropped.Add(1) }

// recordRequest tracks a request entering (delta 1) or leaving (delta -1) the
// correlation map.
func (m *Metrics) recordRequest(delta int) {
	if delta > 0 {
		m.requests.Add(int64(delta))
	}
	m.pending.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		Put:       m.put.Load(),
		Delivered: m.delivered.Load(),
		Timeouts:  m.timeouts.Load(),
		Requests:  m.requests.Load(),
		Responses: m.responses.Load(),
		Dropped:   m.dropped.Load(),
		Pending:   m.pending.Load(),
	}
}
