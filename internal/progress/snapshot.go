package progress

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	aggregateTotalBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "faspmgr",
		Subsystem: "progress",
		Name:      "total_bytes",
		Help:      "Sum of job sizes over live sessions",
	})
	aggregateBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "faspmgr",
		Subsystem: "progress",
		Name:      "bytes",
		Help:      "Bytes transferred over live sessions",
	})
	activitySteps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "faspmgr",
		Subsystem: "progress",
		Name:      "unsized_stats_total",
		Help:      "STATS events received before any session size was known",
	})
)

func init() {
	prometheus.MustRegister(aggregateTotalBytes, aggregateBytes, activitySteps)
}

// State is a point-in-time copy of a SnapshotDisplay.
type State struct {
	Total    int64   `json:"total"`
	Sized    bool    `json:"sized"`
	Progress int64   `json:"progress"`
	Percent  float64 `json:"percent"`
	Steps    int64   `json:"steps"`
	Title    string  `json:"title"`
	Finished bool    `json:"finished"`
}

// SnapshotDisplay records display updates for polling (HTTP status) and
// mirrors them into Prometheus gauges. Safe for concurrent use.
type SnapshotDisplay struct {
	mu sync.Mutex
	st State
}

func NewSnapshotDisplay() *SnapshotDisplay { return &SnapshotDisplay{} }

func (d *SnapshotDisplay) SetTotal(total int64) {
	d.mu.Lock()
	d.st.Total = total
	d.st.Sized = true
	d.st.Finished = false
	d.mu.Unlock()
	aggregateTotalBytes.Set(float64(total))
}

func (d *SnapshotDisplay) SetProgress(n int64) {
	d.mu.Lock()
	d.st.Progress = n
	d.mu.Unlock()
	aggregateBytes.Set(float64(n))
}

func (d *SnapshotDisplay) Increment() {
	d.mu.Lock()
	d.st.Steps++
	d.mu.Unlock()
	activitySteps.Inc()
}

func (d *SnapshotDisplay) SetTitle(title string) {
	d.mu.Lock()
	d.st.Title = title
	d.mu.Unlock()
}

func (d *SnapshotDisplay) Finish() {
	d.mu.Lock()
	d.st.Progress = d.st.Total
	d.st.Finished = true
	d.mu.Unlock()
}

// State returns a copy of the current values.
func (d *SnapshotDisplay) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := d.st
	if st.Sized && st.Total > 0 {
		st.Percent = float64(st.Progress) / float64(st.Total) * 100
	}
	return st
}
