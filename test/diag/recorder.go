// Copyright 2026 Harald Albrecht.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package diag captures structured log records in memory, so tests can check
what ended up on the diagnostic channel.
*/
package diag

import (
	"context"
	"log/slog"
	"sync"
)

// Entry is a captured log record, with its attributes flattened into a map.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]string
}

// Recorder is a slog.Handler recording all log records at any level. Handlers
// derived using WithAttrs and WithGroup record into the same Recorder.
type Recorder struct {
	store *store
	attrs []slog.Attr // keys already qualified by their group.
	group string
}

type store struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns a new, empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{store: &store{}}
}

// Logger returns a logger writing into this Recorder.
func (r *Recorder) Logger() *slog.Logger {
	return slog.New(r)
}

// Entries returns a snapshot of the entries recorded so far.
func (r *Recorder) Entries() []Entry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return append([]Entry(nil), r.store.entries...)
}

// Messages returns the messages of the entries at the specified level
// recorded so far.
func (r *Recorder) Messages(level slog.Level) []string {
	var msgs []string
	for _, e := range r.Entries() {
		if e.Level == level {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Enabled implements slog.Handler, enabling all levels.
func (r *Recorder) Enabled(context.Context, slog.Level) bool { return true }

// Handle implements slog.Handler.
func (r *Recorder) Handle(_ context.Context, rec slog.Record) error {
	e := Entry{
		Level:   rec.Level,
		Message: rec.Message,
		Attrs:   map[string]string{},
	}
	for _, a := range r.attrs {
		e.Attrs[a.Key] = a.Value.String()
	}
	rec.Attrs(func(a slog.Attr) bool {
		e.Attrs[r.key(a.Key)] = a.Value.String()
		return true
	})
	r.store.mu.Lock()
	r.store.entries = append(r.store.entries, e)
	r.store.mu.Unlock()
	return nil
}

// WithAttrs implements slog.Handler.
func (r *Recorder) WithAttrs(attrs []slog.Attr) slog.Handler {
	qualified := append([]slog.Attr(nil), r.attrs...)
	for _, a := range attrs {
		qualified = append(qualified, slog.Attr{Key: r.key(a.Key), Value: a.Value})
	}
	return &Recorder{
		store: r.store,
		attrs: qualified,
		group: r.group,
	}
}

// WithGroup implements slog.Handler.
func (r *Recorder) WithGroup(name string) slog.Handler {
	if name == "" {
		return r
	}
	return &Recorder{
		store: r.store,
		attrs: r.attrs,
		group: r.key(name),
	}
}

func (r *Recorder) key(k string) string {
	if r.group == "" {
		return k
	}
	return r.group + "." + k
}
