// Package panel serves the browser dashboard as embedded static files.
//
// The page is plain HTML and JavaScript talking to /api/v1 and the /api/v1/ws
// event hub. It is compiled into the binary with go:embed so the dashboard
// has no runtime file dependency; a directory may be given instead for
// development. Unknown paths fall back to index.html.
package panel
