/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logger

import (
	"strings"
	"sync"
)

// Entry is a single message captured by a Recorder.
type Entry struct {
	Severity Severity
	Message  string
}

// Recorder is a Sink that keeps every message in memory. Useful in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

var _ Sink = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Log(sev Severity, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{Severity: sev, Message: msg})
}

func (r *Recorder) Info(msg string)    { r.Log(Info, msg) }
func (r *Recorder) Warning(msg string) { r.Log(Warning, msg) }
func (r *Recorder) Error(msg string)   { r.Log(Error, msg) }

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make([]Entry, len(r.entries))
	copy(res, r.entries)
	return res
}

// Filter returns the recorded messages with the given severity.
func (r *Recorder) Filter(sev Severity) []string {
	var res []string
	for _, e := range r.Entries() {
		if e.Severity == sev {
			res = append(res, e.Message)
		}
	}
	return res
}

// Contains reports whether some message with the given severity contains substr.
func (r *Recorder) Contains(sev Severity, substr string) bool {
	for _, m := range r.Filter(sev) {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}
