package panel

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

//go:embed web/*
var content embed.FS

// Handler returns an http.Handler that serves the dashboard page and its
// assets.
//
// When dir names an existing directory the files are read from disk, so the
// page can be edited without rebuilding. Otherwise the embedded copy is used.
// Any path that is not a file serves index.html.
func Handler(dir string) http.Handler {
	files := assets(dir)
	fileServer := http.FileServer(files)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		name := strings.TrimPrefix(path.Clean("/"+r.URL.Path), "/")
		if name != "" && !isFile(files, name) {
			r.URL.Path = "/"
		}
		fileServer.ServeHTTP(w, r)
	})
}

// assets picks the on-disk directory when usable, else the embedded files.
// Panics if the embedded files are missing, which is a build error.
func assets(dir string) http.FileSystem {
	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return http.Dir(dir)
		}
	}

	web, err := fs.Sub(content, "web")
	if err != nil {
		panic(fmt.Sprintf("panel: embedded dashboard missing: %v", err))
	}
	return http.FS(web)
}

func isFile(files http.FileSystem, name string) bool {
	f, err := files.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	return err == nil && !info.IsDir()
}
