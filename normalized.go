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

package spaportal

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
)

// ErrHealthCheckFailed is the one and only error kind of the health check,
// covering transport failures, non-2xx responses, and malformed bodies alike.
var ErrHealthCheckFailed = errors.New("health-check request failed")

// NormalizedHttpError writes a normalized HTTP error message and HTTP status
// code based on the specified error, but not leaking any interesting internal
// server details from this specified error.
func NormalizedHttpError(w http.ResponseWriter, err error) {
	http.Error(w, http.StatusText(NormalizedStatus(err)), NormalizedStatus(err))
}

// NormalizedStatus returns the HTTP status code to report for the specified
// error: missing things are 404s, things out of reach 403s, and everything
// else is our fault.
func NormalizedStatus(err error) int {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, fs.ErrPermission):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
