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
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"net/http"
	stdhttptest "net/http/httptest"
	"strconv"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/thediveo/spaportal/test/diag"
	"github.com/thediveo/spaportal/test/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

//go:embed test/public
var embeddedFiles embed.FS
var embPublicFs, _ = fs.Sub(embeddedFiles, "test/public")

// countingPinger counts the pings fired at it.
type countingPinger struct{ fired atomic.Int32 }

func (p *countingPinger) Fire(context.Context) { p.fired.Add(1) }

// deferredProbe records the paths deferred to it.
type deferredProbe struct{ paths []string }

func (d *deferredProbe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.paths = append(d.paths, r.URL.Path)
	w.WriteHeader(http.StatusTeapot)
}

func serve(h http.Handler, method, path string, header http.Header) *httptest.StrictRecorder {
	GinkgoHelper()
	r := stdhttptest.NewRequest(method, "http://foo.bar:12345"+path, nil)
	for k, v := range header {
		r.Header[k] = v
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func homeDoc(w *httptest.StrictRecorder) *goquery.Document {
	GinkgoHelper()
	Expect(w.Code).To(Equal(http.StatusOK))
	Expect(w.Header().Get("Content-Type")).To(HavePrefix("text/html"))
	doc := Successful(goquery.NewDocumentFromReader(w.Body))
	Expect(doc.Find("div.App").AttrOr("data-route", "")).To(Equal(string(HomeRoute)))
	return doc
}

var _ = Describe("portal", func() {

	DescribeTable("renders the home view on all non-admin paths",
		func(path string) {
			pinger := &countingPinger{}
			probe := &deferredProbe{}
			p := NewPortal(pinger, WithDeferredHandler(probe))
			homeDoc(serve(p, http.MethodGet, path, nil))
			Expect(pinger.fired.Load()).To(Equal(int32(1)))
			Expect(probe.paths).To(BeEmpty())
		},
		Entry("/", "/"),
		Entry("/home", "/home"),
		Entry("unknown paths get the home view too", "/foo"),
		Entry("deep unknown path", "/foo/bar/baz"),
		Entry("/home/", "/home/"),
	)

	DescribeTable("defers admin paths without rendering or pinging",
		func(path, expectedPath string) {
			pinger := &countingPinger{}
			probe := &deferredProbe{}
			p := NewPortal(pinger, WithDeferredHandler(probe))
			w := serve(p, http.MethodGet, path, nil)
			Expect(w.Code).To(Equal(http.StatusTeapot))
			Expect(w.Body.Len()).To(BeZero())
			Expect(probe.paths).To(ConsistOf(expectedPath))
			Expect(pinger.fired.Load()).To(BeZero())
		},
		Entry("/admin", "/admin", "/admin"),
		Entry("/admin/", "/admin/", "/admin/"),
		Entry("/admin/index.html", "/admin/index.html", "/admin/index.html"),
		Entry("/administrator", "/administrator", "/administrator"),
		Entry("sneaking in via ..", "/foo/../admin/config.yml", "/admin/config.yml"),
	)

	It("doesn't let .. escape the admin panel", func() {
		probe := &deferredProbe{}
		p := NewPortal(nil, WithDeferredHandler(probe))
		homeDoc(serve(p, http.MethodGet, "/admin/../../etc/passwd", nil))
		Expect(probe.paths).To(BeEmpty())
	})

	It("returns 404 for admin paths without a deferred handler", func() {
		pinger := &countingPinger{}
		w := serve(NewPortal(pinger), http.MethodGet, "/admin/index.html", nil)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(pinger.fired.Load()).To(BeZero())
	})

	It("renders without a pinger", func() {
		homeDoc(serve(NewPortal(nil), http.MethodGet, "/", nil))
	})

	It("rejects methods other than GET and HEAD", func() {
		pinger := &countingPinger{}
		w := serve(NewPortal(pinger), http.MethodPost, "/", nil)
		Expect(w.Code).To(Equal(http.StatusMethodNotAllowed))
		Expect(w.Header().Get("Allow")).To(Equal("GET, HEAD"))
		Expect(pinger.fired.Load()).To(BeZero())
	})

	It("serves HEAD without a body and without pinging", func() {
		pinger := &countingPinger{}
		w := serve(NewPortal(pinger), http.MethodHead, "/", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Length")).NotTo(BeEmpty())
		Expect(w.Body.Len()).To(BeZero())
		Expect(pinger.fired.Load()).To(BeZero())
	})

	It("treats a nil *HealthCheck as no pinger at all", func() {
		var health *HealthCheck
		p := NewPortal(health)
		Expect(p.health).To(BeNil())
		homeDoc(serve(p, http.MethodGet, "/", nil))
	})

	It("renders the base path and admin link behind a rewriting proxy", func() {
		w := serve(NewPortal(nil), http.MethodGet, "/home", http.Header{
			ForwardedPrefixHeader: []string{"/portal"},
		})
		doc := homeDoc(w)
		Expect(doc.Find("base").AttrOr("href", "")).To(Equal("/portal/"))
		Expect(doc.Find("a.admin-link").AttrOr("href", "")).To(Equal("/portal/admin"))
	})

	It("supports application-specific rewriting/post-processing", func() {
		const canary = "<!-- SOMETHING DIFFERENT -->"
		p := NewPortal(nil, WithPageRewriter(func(r *http.Request, page string) string {
			return page + canary
		}))
		w := serve(p, http.MethodGet, "/", nil)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(HaveSuffix(canary))
		Expect(w.Header().Get("Content-Length")).To(Equal(strconv.Itoa(w.Body.Len())))
	})

	It("logs dispatch decisions", func() {
		rec := diag.NewRecorder()
		p := NewPortal(nil, WithLogger(rec.Logger()), WithLogger(nil))
		_ = serve(p, http.MethodGet, "/admin/", nil)
		Expect(rec.Messages(slog.LevelDebug)).To(ConsistOf("dispatched"))
		Expect(rec.Entries()[0].Attrs).To(And(
			HaveKeyWithValue("path", "/admin/"),
			HaveKeyWithValue("disposition", "Defer")))
	})

	When("talking to a backend", func() {

		It("renders and logs the backend's message", func() {
			b := httptest.NewBackend(http.StatusOK, `{"message":"Hello World"}`)
			defer b.Close()
			rec := diag.NewRecorder()
			health := NewHealthCheck(b.URL, WithHealthLogger(rec.Logger()))

			p := NewPortal(health)
			doc := homeDoc(serve(p, http.MethodGet, "/", nil))
			Expect(doc.Find("p.mt-5").Text()).To(Equal(DefaultTagline))
			health.Wait()

			Expect(b.Requests()).To(Equal(1))
			Expect(rec.Messages(slog.LevelInfo)).To(Equal([]string{"Hello World"}))
			Expect(rec.Messages(slog.LevelError)).To(BeEmpty())
		})

		It("yields admin paths to the static files without pinging", func() {
			b := httptest.NewBackend(http.StatusOK, `{"message":"Hello World"}`)
			defer b.Close()
			rec := diag.NewRecorder()
			health := NewHealthCheck(b.URL, WithHealthLogger(rec.Logger()))

			p := NewPortal(health, WithDeferredHandler(NewStaticHandler(embPublicFs)))
			w := serve(p, http.MethodGet, "/admin/config.yml", nil)
			health.Wait()

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("CANARY CONFIG"))
			Expect(w.Body.String()).NotTo(ContainSubstring(DefaultTagline))
			Expect(b.Requests()).To(BeZero())
			Expect(rec.Entries()).To(BeEmpty())
		})

		It("renders the same view when the backend is unreachable", func() {
			good := httptest.NewBackend(http.StatusOK, `{"message":"Hello World"}`)
			defer good.Close()
			healthy := NewHealthCheck(good.URL)
			expected := serve(NewPortal(healthy), http.MethodGet, "/", nil).Body.String()
			healthy.Wait()

			bad := httptest.NewBackend(http.StatusOK, ``)
			url := bad.URL
			bad.Close()
			rec := diag.NewRecorder()
			health := NewHealthCheck(url, WithHealthLogger(rec.Logger()))

			w := serve(NewPortal(health), http.MethodGet, "/", nil)
			health.Wait()

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal(expected))
			Expect(rec.Messages(slog.LevelError)).To(HaveLen(1))
			Expect(rec.Messages(slog.LevelInfo)).To(BeEmpty())
			Expect(health.Status().State).To(Equal(PingFailed))
		})

	})

})
