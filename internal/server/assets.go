package server

import (
	"embed"
	"io/fs"
	"os"
)

//go:embed all:assets
var assetsFS embed.FS

// Assets returns the web assets. RIDEWAIT_ASSETS_DIR serves them from disk
// instead, which avoids rebuilding while editing templates.
func Assets() fs.FS {
	if dir := os.Getenv("RIDEWAIT_ASSETS_DIR"); dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return os.DirFS(dir)
		}
	}

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic("failed to create assets sub-filesystem: " + err.Error())
	}
	return assets
}
