//go:build !ffmpeg_embedded

package ffmpeg

import "io/fs"

// plain builds carry no bundles and always download
func bundledArchives() fs.FS {
	return nil
}
