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
	"net/http"
	"net/url"
	"path"
	"strings"
)

// ForwardedPrefixHeader, if present, specifies the prefix a path rewriting
// proxy stripped off the original request path.
const ForwardedPrefixHeader = "X-Forwarded-Prefix"

// ForwardedUriHeader, if present, specifies the original URI, or with some
// proxies only the original URI path, of a request when it hit the first path
// rewriting proxy.
const ForwardedUriHeader = "X-Forwarded-Uri"

// originalPath returns the (hopefully) original request path as seen by the
// first proxy in a chain, based on what has been passed down to us. If there
// is no usable forwarding information, it falls back to the request path we
// see ourselves, which the Portal has already cleaned.
func originalPath(r *http.Request) string {
	// Did a proxy strip a prefix off the path? Then the original request
	// path was the forwarded prefix, followed by whatever is left that we
	// get to see now.
	if prefix := r.Header.Get(ForwardedPrefixHeader); prefix != "" {
		return path.Join(path.Clean("/"+prefix), r.URL.Path)
	}
	// Did a proxy pass on the original URI instead? Proxies don't quite agree
	// on what goes into this header: some send only the path, others the
	// full URI. Either way, clean it up before trusting it an inch; and if it
	// doesn't even parse, simply ignore it.
	if fwuri := r.Header.Get(ForwardedUriHeader); fwuri != "" {
		if strings.HasPrefix(fwuri, "/") {
			return path.Clean(fwuri)
		}
		if u, err := url.Parse(fwuri); err == nil {
			return path.Clean("/" + u.Path)
		}
	}
	return r.URL.Path
}

// BasePath returns the base path the portal is reachable at from the client's
// perspective, always ending in "/". Rewriting proxies need to pass on the
// original request path for this to work; if the base path cannot be derived,
// it is taken to be "/". The home view uses the base path for its <base>
// element and for linking to the admin panel, so both keep working even when
// the portal gets mounted somewhere below the root.
func BasePath(r *http.Request) string {
	reqPath := r.URL.Path
	orig := originalPath(r)
	// Take care of a reverse proxy redirecting /foo to /foo/ and then
	// rewriting the latter to "/": the original path then lacks the trailing
	// slash our request path has.
	if strings.HasSuffix(reqPath, "/") && !strings.HasSuffix(orig, "/") {
		orig += "/"
	}
	// Only if the request path we see is a proper suffix of the original
	// path is the remaining front part our base; otherwise something got
	// rewritten beyond recognition and we stick with the root.
	var base string
	if strings.HasSuffix(orig, reqPath) {
		base = orig[:len(orig)-len(reqPath)]
	}
	// Make sure the base always ends in "/", as otherwise browsers apply a
	// dirname() to it, clipping off the final element that was a perfectly
	// fine directory name. Oh, well.
	if strings.HasSuffix(base, "/") {
		return base
	}
	return base + "/"
}
