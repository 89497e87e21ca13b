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

package httptest

import (
	"net/http"
	stdhttptest "net/http/httptest"
	"sync"
)

// Backend is a stub backend serving the health-check endpoint "/api/" with a
// fixed response, counting the requests it sees.
type Backend struct {
	*stdhttptest.Server

	status int
	body   string

	mu         sync.Mutex
	requests   int
	requestIDs []string
}

// NewBackend starts and returns a new stub backend answering health-check
// requests with the specified status code and JSON body. Callers must Close
// the backend when done.
func NewBackend(status int, body string) *Backend {
	b := &Backend{status: status, body: body}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", b.serveHealth)
	b.Server = stdhttptest.NewServer(mux)
	return b
}

func (b *Backend) serveHealth(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.requests++
	b.requestIDs = append(b.requestIDs, r.Header.Get("X-Request-Id"))
	b.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.status)
	_, _ = w.Write([]byte(b.body))
}

// Requests returns the number of health-check requests seen so far.
func (b *Backend) Requests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests
}

// RequestIDs returns the correlation IDs of the health-check requests seen so
// far, in order of arrival.
func (b *Backend) RequestIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requestIDs...)
}
