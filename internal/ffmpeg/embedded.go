//go:build ffmpeg_embedded

package ffmpeg

import (
	"embed"
	"io/fs"
)

// bundles for release builds: go build -tags ffmpeg_embedded, with the
// platform zips placed under assets/
//
//go:embed assets/*
var assets embed.FS

func bundledArchives() fs.FS {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		return nil
	}
	return sub
}
