package notestore

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) record(kind, path string) {
	l.mu.Lock()
	l.events = append(l.events, kind)
	l.mu.Unlock()
}

func (l *eventLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func startWatch(t *testing.T, s *Store, log *eventLog) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, s, quietLogger(), log.record)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_ForeignWriteReported(t *testing.T) {
	s, f := tempStore(t)
	_ = s.Save("mine", "1")

	var log eventLog
	startWatch(t, s, &log)

	_ = os.WriteFile(f.Path(), []byte(`{"theirs": "2"}`), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.count() == 1
	}, "foreign write not reported")

	if _, ok := s.Get("theirs"); ok {
		t.Error("watcher must not reload the store")
	}
}

func TestWatch_OwnWritesIgnored(t *testing.T) {
	s, _ := tempStore(t)

	var log eventLog
	startWatch(t, s, &log)

	_ = s.Save("a", "1")
	_ = s.Save("b", "2")
	_ = s.Delete("a")

	time.Sleep(600 * time.Millisecond)
	if n := log.count(); n != 0 {
		t.Errorf("own writes reported %d times", n)
	}
}

func TestWatch_ForeignRemoveReported(t *testing.T) {
	s, f := tempStore(t)
	_ = s.Save("a", "1")

	var log eventLog
	startWatch(t, s, &log)

	_ = os.Remove(f.Path())

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return log.count() == 1
	}, "foreign remove not reported")
}
