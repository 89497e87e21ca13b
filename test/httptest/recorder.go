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
Package httptest provides HTTP test helpers: a response recorder failing any
test doing superfluous response.WriteHeader calls, and a stub backend serving
the health-check endpoint.
*/
package httptest

import (
	stdhttptest "net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// StrictRecorder wraps httptest.ResponseRecorder in order to fail tests doing
// superfluous WriteHeader calls.
type StrictRecorder struct {
	*stdhttptest.ResponseRecorder
	headerWrites int
}

// NewRecorder returns a new test response recorder detecting superfluous
// WriteHeader calls.
func NewRecorder() *StrictRecorder {
	return &StrictRecorder{
		ResponseRecorder: stdhttptest.NewRecorder(),
	}
}

// WriteHeader implements http.ResponseWriter, failing tests that do superfluous
// WriteHeader calls.
func (w *StrictRecorder) WriteHeader(code int) {
	GinkgoHelper()
	w.headerWrites++
	Expect(w.headerWrites).To(Equal(1), "superfluous response.WriteHeader call")
	w.ResponseRecorder.WriteHeader(code)
}

// Written reports whether anything at all has been written to this recorder,
// be it a header or a body.
func (w *StrictRecorder) Written() bool {
	return w.headerWrites > 0 || w.ResponseRecorder.Body.Len() > 0
}
