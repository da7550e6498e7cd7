package eventlog

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	BufferSize           = 1024                   // Ring buffer slots
	MaxEventsPerSec      = 1000                   // Global rate limit
	MaxEventsPerPart     = 50                     // Per-participant rate limit per second
	BatchFlushSize       = 64                     // Events per batch write
	BatchFlushInterval   = 100 * time.Millisecond // How often to flush
	ParticipantLimitIdle = 5 * time.Minute        // Idle limiters are dropped after this
)

// Log is a bounded, rate-limited journal with an async writer.
// Emit must be called from a single goroutine (the session).
type Log struct {
	buffer    [BufferSize]Event
	writeHead uint64 // atomic
	readHead  uint64 // atomic

	globalLimiter *rate.Limiter
	limiterMu     sync.Mutex
	limiters      map[string]*limiterEntry

	writerWg sync.WaitGroup
	stopChan chan struct{}
	stopOnce sync.Once
	running  atomic.Bool

	outMu  sync.Mutex
	out    *bufio.Writer
	closer io.Closer

	droppedCount uint64 // atomic
	totalCount   uint64 // atomic
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// New creates a stopped journal
func New() *Log {
	return &Log{
		globalLimiter: rate.NewLimiter(MaxEventsPerSec, MaxEventsPerSec/10),
		limiters:      make(map[string]*limiterEntry),
		stopChan:      make(chan struct{}),
	}
}

// Start opens path for append and starts the writer
func (l *Log) Start(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	l.StartWriter(f)
	return nil
}

// StartWriter starts the writer on w. w is closed by Stop when it is an io.Closer.
func (l *Log) StartWriter(w io.Writer) {
	if l.running.Load() {
		return
	}
	l.out = bufio.NewWriter(w)
	if c, ok := w.(io.Closer); ok {
		l.closer = c
	}

	l.running.Store(true)
	l.writerWg.Add(1)
	go l.writerLoop()
}

// Stop flushes pending events and closes the output
func (l *Log) Stop() {
	l.stopOnce.Do(func() {
		if !l.running.Load() {
			return
		}
		l.running.Store(false)
		close(l.stopChan)
		l.writerWg.Wait()

		l.outMu.Lock()
		l.out.Flush()
		if l.closer != nil {
			l.closer.Close()
		}
		l.outMu.Unlock()
	})
}

// Emit queues an event. It reports false when the event was rate limited
// or the journal is not running. A full buffer drops the oldest entry.
func (l *Log) Emit(event Event) bool {
	if !l.running.Load() {
		return false
	}

	if !l.globalLimiter.Allow() {
		atomic.AddUint64(&l.droppedCount, 1)
		return false
	}
	if event.Participant != "" && !l.participantLimiter(event.Participant).Allow() {
		atomic.AddUint64(&l.droppedCount, 1)
		return false
	}

	head := atomic.LoadUint64(&l.writeHead)
	tail := atomic.LoadUint64(&l.readHead)
	if head-tail >= BufferSize {
		atomic.CompareAndSwapUint64(&l.readHead, tail, tail+1)
		atomic.AddUint64(&l.droppedCount, 1)
	}

	event.Sequence = head + 1
	l.buffer[head%BufferSize] = event
	atomic.StoreUint64(&l.writeHead, head+1)

	atomic.AddUint64(&l.totalCount, 1)
	return true
}

func (l *Log) participantLimiter(name string) *rate.Limiter {
	l.limiterMu.Lock()
	defer l.limiterMu.Unlock()

	now := time.Now()
	if e, ok := l.limiters[name]; ok {
		e.lastUsed = now
		return e.limiter
	}

	// opportunistic cleanup keeps the map bounded
	for k, e := range l.limiters {
		if now.Sub(e.lastUsed) > ParticipantLimitIdle {
			delete(l.limiters, k)
		}
	}

	e := &limiterEntry{
		limiter:  rate.NewLimiter(MaxEventsPerPart, MaxEventsPerPart),
		lastUsed: now,
	}
	l.limiters[name] = e
	return e.limiter
}

func (l *Log) writerLoop() {
	defer l.writerWg.Done()

	ticker := time.NewTicker(BatchFlushInterval)
	defer ticker.Stop()

	batch := make([]Event, 0, BatchFlushSize)
	for {
		select {
		case <-l.stopChan:
			for {
				batch = l.collectBatch(batch[:0])
				if len(batch) == 0 {
					return
				}
				l.flushBatch(batch)
			}
		case <-ticker.C:
			batch = l.collectBatch(batch[:0])
			if len(batch) > 0 {
				l.flushBatch(batch)
			}
		}
	}
}

// collectBatch reads available events from the ring
func (l *Log) collectBatch(batch []Event) []Event {
	head := atomic.LoadUint64(&l.writeHead)
	tail := atomic.LoadUint64(&l.readHead)

	for i := tail; i < head && len(batch) < BatchFlushSize; i++ {
		batch = append(batch, l.buffer[i%BufferSize])
	}
	if len(batch) > 0 {
		atomic.AddUint64(&l.readHead, uint64(len(batch)))
	}
	return batch
}

// flushBatch appends events as JSON lines
func (l *Log) flushBatch(batch []Event) {
	l.outMu.Lock()
	defer l.outMu.Unlock()

	enc := json.NewEncoder(l.out)
	for _, event := range batch {
		enc.Encode(event)
	}
	l.out.Flush()
}

// Stats reports journal counters
func (l *Log) Stats() (total, dropped uint64) {
	return atomic.LoadUint64(&l.totalCount), atomic.LoadUint64(&l.droppedCount)
}
