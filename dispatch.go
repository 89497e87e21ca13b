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

import "strings"

// AdminPathPrefix is the literal path prefix of the statically hosted admin
// panel. Any request path starting with this prefix is never handled by the
// portal's own view.
const AdminPathPrefix = "/admin"

// Disposition is the outcome of dispatching a navigation path: either the
// portal renders its app view, or it defers to statically served content.
type Disposition int

const (
	// RenderApp renders the portal's single-page app view.
	RenderApp Disposition = iota
	// Defer renders nothing, leaving the path to the static file layer.
	Defer
)

// String returns the name of the disposition.
func (d Disposition) String() string {
	switch d {
	case RenderApp:
		return "RenderApp"
	case Defer:
		return "Defer"
	}
	return "Disposition(?)"
}

// Route identifies a view inside the app.
type Route string

// HomeRoute is the one and only view of the app.
const HomeRoute Route = "home"

// Dispatch decides whether the specified navigation path is handled by the
// app view or deferred to the admin panel. Dispatch is total: it never fails
// and takes the path literally, so it doesn't look at query strings or
// fragments and doesn't clean the path; see Portal for that.
func Dispatch(path string) Disposition {
	if strings.HasPrefix(path, AdminPathPrefix) {
		return Defer
	}
	return RenderApp
}

// Resolve maps a path that dispatched to RenderApp onto an app route. Both "/"
// and "/home" map to HomeRoute, and so does any other path, as there is no
// not-found view.
func Resolve(path string) Route {
	switch path {
	case "/", "/home":
		return HomeRoute
	}
	// TODO: render a not-found view for unknown routes instead of home.
	return HomeRoute
}
