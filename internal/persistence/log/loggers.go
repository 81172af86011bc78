package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"genesis.ai/internal/sim/world"
)

const (
	eventsPrefix = "events"
	hourLayout   = "2006-01-02-15"
)

// EventsDir is where a world's tick log lives.
func EventsDir(worldDir string) string { return filepath.Join(worldDir, "events") }

// HourlyWriter appends JSON lines to <dir>/<prefix>-YYYY-MM-DD-HH.jsonl.zst,
// starting a new file at every UTC hour. Reopening an existing hour appends
// another zstd frame, which readers decode transparently.
type HourlyWriter struct {
	dir    string
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	hour string
	file *os.File
	zw   *zstd.Encoder
	buf  *bufio.Writer
}

func NewHourlyWriter(dir, prefix string) *HourlyWriter {
	return &HourlyWriter{dir: dir, prefix: prefix, now: time.Now}
}

func (w *HourlyWriter) Write(v any) error {
	line, err := json.Marshal(v)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	w.mu.Lock()
	defer w.mu.Unlock()
	if hour := w.now().UTC().Format(hourLayout); hour != w.hour || w.buf == nil {
		if err := w.open(hour); err != nil {
			return err
		}
	}
	if _, err := w.buf.Write(line); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *HourlyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeCurrent()
}

// Path is the file a given hour is written to.
func (w *HourlyWriter) Path(hour time.Time) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour.UTC().Format(hourLayout)))
}

func (w *HourlyWriter) open(hour string) error {
	if err := w.closeCurrent(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.file, w.zw, w.buf, w.hour = f, zw, bufio.NewWriterSize(zw, 128*1024), hour
	return nil
}

func (w *HourlyWriter) closeCurrent() error {
	if w.file == nil {
		return nil
	}
	err := w.buf.Flush()
	if cerr := w.zw.Close(); err == nil {
		err = cerr
	}
	if cerr := w.file.Close(); err == nil {
		err = cerr
	}
	w.file, w.zw, w.buf = nil, nil, nil
	return err
}

// TickLogger writes one compressed JSONL entry per tick.
type TickLogger struct{ w *HourlyWriter }

func NewTickLogger(worldDir string) *TickLogger {
	return &TickLogger{w: NewHourlyWriter(EventsDir(worldDir), eventsPrefix)}
}

func (l *TickLogger) WriteTick(v world.TickLogEntry) error { return l.w.Write(v) }
func (l *TickLogger) Close() error                         { return l.w.Close() }

// MultiTickLogger fans one entry out to several loggers, returning the first error.
type MultiTickLogger []world.TickLogger

func (m MultiTickLogger) WriteTick(v world.TickLogEntry) error {
	var first error
	for _, l := range m {
		if l == nil {
			continue
		}
		if err := l.WriteTick(v); err != nil && first == nil {
			first = err
		}
	}
	return first
}
