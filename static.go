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
	"io/fs"
	"net/http"
	"path"
	"strings"
)

// StaticHandler serves static files, such as the admin panel, from an fs.FS.
// Request paths map onto unrooted fs paths, so "/admin/index.html" is served
// from "admin/index.html".
type StaticHandler struct {
	fs          fs.FS
	fileHandler http.Handler
}

// NewStaticHandler returns a new handler serving the static files in fsys. To
// serve from a directory on the OS file system use os.DirFS:
//
//	h := NewStaticHandler(os.DirFS("/opt/data/public"))
func NewStaticHandler(fsys fs.FS) *StaticHandler {
	return &StaticHandler{
		fs:          fsys,
		fileHandler: http.FileServer(http.FS(fsys)),
	}
}

// ServeHTTP serves the requested file, or the index.html of the requested
// directory. Errors are reported without leaking any details.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.URL.Path = cleanPath(r.URL.Path)
	name := strings.TrimSuffix(r.URL.Path[1:], "/") // ...fs.FS uses unrooted paths.
	if name == "" {
		name = "."
	}
	info, err := fs.Stat(h.fs, name)
	if err != nil {
		NormalizedHttpError(w, err)
		return
	}
	if info.IsDir() {
		// Directories are only served through their index.html; we don't
		// hand out listings.
		if _, err := fs.Stat(h.fs, path.Join(name, "index.html")); err != nil {
			NormalizedHttpError(w, err)
			return
		}
	} else if !info.Mode().IsRegular() {
		NormalizedHttpError(w, fs.ErrNotExist)
		return
	}
	h.fileHandler.ServeHTTP(w, r)
}
