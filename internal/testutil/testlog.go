// Package testlog records log entries in memory so tests can assert on what
// a component logged.
package testlog

import (
	"sync"

	"service-dispatch/internal/logx"
)

// Entry is one recorded log call.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Recorder collects entries from every logger handed out by Logger.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// New creates an empty Recorder.
func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger writing into the recorder.
func (r *Recorder) Logger() logx.Logger {
	return bound{r: r}
}

// Entries returns a snapshot of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Has reports whether any entry carries the given message.
func (r *Recorder) Has(msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.Msg == msg {
			return true
		}
	}
	return false
}

func (r *Recorder) add(level, msg string, fields []logx.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := append([]logx.Field(nil), fields...)
	r.entries = append(r.entries, Entry{Level: level, Msg: msg, Fields: cp})
}

type bound struct {
	r    *Recorder
	base []logx.Field
}

func (b bound) Debug(msg string, f ...logx.Field) { b.r.add("debug", msg, append(b.base, f...)) }
func (b bound) Info(msg string, f ...logx.Field)  { b.r.add("info", msg, append(b.base, f...)) }
func (b bound) Warn(msg string, f ...logx.Field)  { b.r.add("warn", msg, append(b.base, f...)) }
func (b bound) Error(msg string, f ...logx.Field) { b.r.add("error", msg, append(b.base, f...)) }

func (b bound) With(f ...logx.Field) logx.Logger {
	nb := bound{r: b.r, base: append([]logx.Field(nil), b.base...)}
	nb.base = append(nb.base, f...)
	return nb
}

func (b bound) Sync() error { return nil }

var _ logx.Logger = bound{}
