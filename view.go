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
	"embed"
	"html/template"
	"io"
	"strings"
)

//go:embed templates/home.html
var templates embed.FS

var homeTemplate = template.Must(template.ParseFS(templates, "templates/home.html"))

// Placeholder contents of the home view.
const (
	DefaultTitle     = "Portal"
	DefaultTagline   = "Building something incredible ~!"
	DefaultLogoLink  = "https://emergent.sh"
	DefaultLogoImage = "https://avatars.githubusercontent.com/in/1201222?s=120&u=2686cf91179bbafbc7a71bfbc43004cf9ae1acea&v=4"
)

// defaultAdminNotes are the status notes listed below the admin panel link.
var defaultAdminNotes = []string{
	"Fixed: Duplicate 'editor' keys issue resolved",
	"YAML syntax validated",
	"Proper configuration structure applied",
}

// DefaultAdminNotes returns a fresh copy of the default status notes listed
// below the admin panel link.
func DefaultAdminNotes() []string {
	return append([]string(nil), defaultAdminNotes...)
}

// View is the data the home view gets rendered from.
type View struct {
	Route      Route
	Base       string // base path, always ending in "/".
	Title      string
	Tagline    string
	LogoLink   string
	LogoImage  string
	AdminNotes []string
}

// NewView returns the placeholder home view for the specified route and base
// path.
func NewView(route Route, base string) View {
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return View{
		Route:      route,
		Base:       base,
		Title:      DefaultTitle,
		Tagline:    DefaultTagline,
		LogoLink:   DefaultLogoLink,
		LogoImage:  DefaultLogoImage,
		AdminNotes: DefaultAdminNotes(),
	}
}

// AdminHref returns the link to the admin panel, relative to the view's base
// path.
func (v View) AdminHref() string {
	return v.Base + AdminPathPrefix[1:]
}

// Render writes the view's HTML to w.
func (v View) Render(w io.Writer) error {
	return homeTemplate.Execute(w, v)
}
