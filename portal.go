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
	"bytes"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// Portal implements an http.Handler that renders the app's home view on all
// request paths, except for paths below AdminPathPrefix. These are deferred
// to another handler, typically serving the static admin panel files.
type Portal struct {
	health   Pinger       // pinged each time the view gets displayed; may be nil.
	deferred http.Handler // handles deferred paths; nil means 404.
	rewriter PageRewriter // optional post-processing of the rendered page.
	log      *slog.Logger
}

// PortalOption sets optional properties at the time of creating a Portal.
type PortalOption func(*Portal)

// PageRewriter rewrites (parts of) the rendered home view HTML before it gets
// delivered to the requesting client.
type PageRewriter func(r *http.Request, page string) string

// WithDeferredHandler sets the handler receiving all requests that the portal
// defers, such as the static admin panel.
func WithDeferredHandler(h http.Handler) PortalOption {
	return func(p *Portal) { p.deferred = h }
}

// WithPageRewriter sets the specified PageRewriter that gets called before
// delivering the rendered home view, allowing for application-specific
// changes.
func WithPageRewriter(rewriter PageRewriter) PortalOption {
	return func(p *Portal) { p.rewriter = rewriter }
}

// WithLogger sets the logger for dispatch decisions and rendering failures.
func WithLogger(log *slog.Logger) PortalOption {
	return func(p *Portal) {
		if log != nil {
			p.log = log
		}
	}
}

// NewPortal returns a new portal handler, firing a health ping using the
// specified Pinger whenever it renders its view for a GET request. A nil
// Pinger, including a nil *HealthCheck, disables the health ping.
func NewPortal(health Pinger, opts ...PortalOption) *Portal {
	// A nil *HealthCheck wrapped in the Pinger interface isn't a nil
	// interface, so it would blow up on the first render.
	if hc, ok := health.(*HealthCheck); ok && hc == nil {
		health = nil
	}
	p := &Portal{
		health: health,
		log:    discardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ServeHTTP dispatches on the cleaned request path: deferred paths are passed
// on untouched, everything else renders the home view.
func (p *Portal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	r.URL.Path = cleanPath(r.URL.Path)
	disp := Dispatch(r.URL.Path)
	p.log.Debug("dispatched",
		slog.String("path", r.URL.Path),
		slog.String("disposition", disp.String()))
	if disp == Defer {
		if p.deferred == nil {
			NormalizedHttpError(w, fs.ErrNotExist)
			return
		}
		p.deferred.ServeHTTP(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", strings.Join([]string{http.MethodGet, http.MethodHead}, ", "))
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	p.render(w, r, Resolve(r.URL.Path))
}

// cleanPath returns the cleaned, rooted version of the specified path,
// preserving a trailing slash. Slapping "/" in front ensures that path.Clean
// never resolves relative to anything and that ".." can't climb out of the
// root. The trailing slash matters to http.FileServer, which otherwise keeps
// redirecting directories.
func cleanPath(p string) string {
	cleaned := path.Clean("/" + p)
	if cleaned != "/" && strings.HasSuffix(p, "/") {
		cleaned += "/"
	}
	return cleaned
}

// render renders the view for the specified route and then fires the health
// ping, but only for GET: a HEAD, such as from a load balancer probing us, is
// no display. The ping's outcome has no bearing on what gets rendered.
func (p *Portal) render(w http.ResponseWriter, r *http.Request, route Route) {
	var buf bytes.Buffer
	if err := NewView(route, BasePath(r)).Render(&buf); err != nil {
		p.log.Error("cannot render view",
			slog.String("route", string(route)),
			slog.String("error", err.Error()))
		NormalizedHttpError(w, err)
		return
	}
	page := buf.String()
	if p.rewriter != nil {
		page = p.rewriter(r, page)
	}
	h := w.Header()
	h.Set("Content-Type", "text/html; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(page)))
	h.Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write([]byte(page))
	if p.health != nil {
		p.health.Fire(r.Context())
	}
}
