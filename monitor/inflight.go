package monitor

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ModelMetrics holds the upstream call counters for one model.
type ModelMetrics struct {
	Model           string
	ProcessingCount int
	Completed       int
	Failed          int
	LastLogTime     time.Time
	changed         bool
	mu              sync.Mutex
}

// Snapshot is a copy of a model's counters.
type Snapshot struct {
	Model           string
	ProcessingCount int
	Completed       int
	Failed          int
}

// InflightMonitor counts upstream calls per model and logs changes at a bounded rate.
// It only observes; it never blocks or rejects a call.
type InflightMonitor struct {
	metricsMap map[string]*ModelMetrics
	mu         sync.Mutex
	log        *logrus.Logger
	interval   time.Duration
	shutdownCh chan struct{}
	once       sync.Once
}

func NewInflightMonitor(log *logrus.Logger, interval time.Duration) *InflightMonitor {
	if interval <= 0 {
		interval = time.Second
	}
	return &InflightMonitor{
		metricsMap: make(map[string]*ModelMetrics),
		log:        log,
		interval:   interval,
		shutdownCh: make(chan struct{}),
	}
}

// Start launches the logging loop.
func (m *InflightMonitor) Start() {
	go m.monitorMetrics()
}

// Track marks the start of an upstream call. The returned func must be called
// exactly once with the call's outcome.
func (m *InflightMonitor) Track(model string) func(err error) {
	metrics := m.metricsFor(model)
	metrics.incrementProcessing()

	var done sync.Once
	return func(err error) {
		done.Do(func() {
			metrics.decrementProcessing(err == nil)
		})
	}
}

// Snapshot returns the current counters for model.
func (m *InflightMonitor) Snapshot(model string) Snapshot {
	metrics := m.metricsFor(model)
	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	return Snapshot{
		Model:           metrics.Model,
		ProcessingCount: metrics.ProcessingCount,
		Completed:       metrics.Completed,
		Failed:          metrics.Failed,
	}
}

func (m *InflightMonitor) Shutdown() {
	m.once.Do(func() {
		close(m.shutdownCh)
	})
}

func (m *InflightMonitor) metricsFor(model string) *ModelMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	metrics, ok := m.metricsMap[model]
	if !ok {
		metrics = &ModelMetrics{Model: model}
		m.metricsMap[model] = metrics
	}
	return metrics
}

func (m *InflightMonitor) monitorMetrics() {
	ticker := time.NewTicker(m.interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-m.shutdownCh:
			return
		case <-ticker.C:
			m.logChanged(time.Now())
		}
	}
}

func (m *InflightMonitor) logChanged(now time.Time) {
	m.mu.Lock()
	all := make([]*ModelMetrics, 0, len(m.metricsMap))
	for _, metrics := range m.metricsMap {
		all = append(all, metrics)
	}
	m.mu.Unlock()

	for _, metrics := range all {
		metrics.mu.Lock()
		if metrics.changed && now.Sub(metrics.LastLogTime) >= m.interval {
			m.log.Infof("Model: %s | Processing: %d | Completed: %d | Failed: %d",
				metrics.Model, metrics.ProcessingCount, metrics.Completed, metrics.Failed)
			metrics.LastLogTime = now
			metrics.changed = false
		}
		metrics.mu.Unlock()
	}
}

func (mm *ModelMetrics) incrementProcessing() {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.ProcessingCount++
	mm.changed = true
}

func (mm *ModelMetrics) decrementProcessing(ok bool) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	if mm.ProcessingCount > 0 {
		mm.ProcessingCount--
	}
	if ok {
		mm.Completed++
	} else {
		mm.Failed++
	}
	mm.changed = true
}
