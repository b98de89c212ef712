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

	"github.com/brunt/sulis/internal/area"
)

// HourlyWriter appends JSON lines to `<dir>/<prefix>-YYYY-MM-DD-HH.jsonl.zst`,
// starting a new file when the UTC hour changes. Reopening an existing
// hour appends a new zstd frame.
type HourlyWriter struct {
	dir    string
	prefix string
	now    func() time.Time

	mu   sync.Mutex
	hour string
	f    *os.File
	enc  *zstd.Encoder
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

	w.mu.Lock()
	defer w.mu.Unlock()

	if hour := w.now().UTC().Format("2006-01-02-15"); hour != w.hour {
		if err := w.openLocked(hour); err != nil {
			return err
		}
	}
	if _, err := w.buf.Write(line); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	return w.buf.Flush()
}

func (w *HourlyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// Path returns the file for the given time.
func (w *HourlyWriter) Path(t time.Time) string {
	return w.pathFor(t.UTC().Format("2006-01-02-15"))
}

func (w *HourlyWriter) openLocked(hour string) error {
	if err := w.closeLocked(); err != nil {
		return err
	}
	path := w.pathFor(hour)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	w.hour, w.f, w.enc = hour, f, enc
	w.buf = bufio.NewWriterSize(enc, 64*1024)
	return nil
}

func (w *HourlyWriter) closeLocked() error {
	if w.f == nil {
		return nil
	}
	flushErr := w.buf.Flush()
	encErr := w.enc.Close()
	fileErr := w.f.Close()
	w.hour, w.f, w.enc, w.buf = "", nil, nil, nil
	for _, err := range []error{flushErr, encErr, fileErr} {
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *HourlyWriter) pathFor(hour string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s-%s.jsonl.zst", w.prefix, hour))
}

// DiagnosticLogger records area diagnostics as compressed JSON lines.
// It implements area.DiagnosticSink.
type DiagnosticLogger struct{ w *HourlyWriter }

func NewDiagnosticLogger(dir, prefix string) *DiagnosticLogger {
	if prefix == "" {
		prefix = "diagnostics"
	}
	return &DiagnosticLogger{w: NewHourlyWriter(dir, prefix)}
}

func (l *DiagnosticLogger) WriteDiagnostic(d area.Diagnostic) error { return l.w.Write(d) }
func (l *DiagnosticLogger) Close() error                            { return l.w.Close() }
