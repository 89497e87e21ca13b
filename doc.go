/*
Package spaportal serves a minimal single-page portal: a placeholder landing
page that pings a backend health endpoint and links to a statically served
content management admin panel.

The heart of the portal is Dispatch, deciding per request path whether the
portal renders its app view (RenderApp) or defers to the statically served
admin panel (Defer) below AdminPathPrefix. Portal implements http.Handler on
top of Dispatch, rendering the view itself and handing deferred requests to
another handler, typically a StaticHandler serving files from any fs.FS.

Each time the view is displayed the portal fires a HealthCheck ping at the
backend's "/api/" endpoint. The ping is fire-and-forget: its outcome is logged
and can be queried using HealthCheck.Status, but never changes what gets
rendered.

The view's base path is derived from forwarding proxy headers, so the portal
can be served from varying base paths behind rewriting reverse proxies.
*/
package spaportal
