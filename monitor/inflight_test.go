package monitor

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestLogger(buf *bytes.Buffer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(buf)
	l.SetLevel(logrus.InfoLevel)
	return l
}

func TestTrackCounts(t *testing.T) {
	m := NewInflightMonitor(logrus.New(), time.Second)

	finishA := m.Track("gpt")
	finishB := m.Track("gpt")
	if got := m.Snapshot("gpt").ProcessingCount; got != 2 {
		t.Fatalf("ProcessingCount = %d, want 2", got)
	}

	finishA(nil)
	finishA(nil) // second call is ignored
	finishB(errors.New("boom"))

	s := m.Snapshot("gpt")
	if s.ProcessingCount != 0 || s.Completed != 1 || s.Failed != 1 {
		t.Errorf("Snapshot = %+v, want 0 processing, 1 completed, 1 failed", s)
	}
}

func TestTrackConcurrent(t *testing.T) {
	m := NewInflightMonitor(logrus.New(), time.Second)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Track("gpt")(nil)
		}()
	}
	wg.Wait()

	if s := m.Snapshot("gpt"); s.ProcessingCount != 0 || s.Completed != 50 {
		t.Errorf("Snapshot = %+v, want 0 processing, 50 completed", s)
	}
}

func TestLogChangedRateLimited(t *testing.T) {
	var buf bytes.Buffer
	m := NewInflightMonitor(newTestLogger(&buf), time.Second)

	m.Track("gpt")
	now := time.Now()
	m.logChanged(now)
	if !strings.Contains(buf.String(), "Model: gpt | Processing: 1") {
		t.Fatalf("log = %q, want processing line", buf.String())
	}

	buf.Reset()
	m.Track("gpt")
	m.logChanged(now.Add(100 * time.Millisecond))
	if buf.Len() != 0 {
		t.Errorf("log = %q, want nothing inside the interval", buf.String())
	}

	m.logChanged(now.Add(2 * time.Second))
	if !strings.Contains(buf.String(), "Processing: 2") {
		t.Errorf("log = %q, want processing 2", buf.String())
	}

	buf.Reset()
	m.logChanged(now.Add(4 * time.Second))
	if buf.Len() != 0 {
		t.Errorf("log = %q, want nothing when unchanged", buf.String())
	}
}

func TestShutdownIsIdempotent(t *testing.T) {
	m := NewInflightMonitor(logrus.New(), 10*time.Millisecond)
	m.Start()
	m.Shutdown()
	m.Shutdown()
}
