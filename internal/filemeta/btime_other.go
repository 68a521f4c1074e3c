//go:build !linux && !darwin && !freebsd && !netbsd && !windows

package filemeta

import (
	"os"
	"time"
)

// birthTime falls back to the modification time where no creation time is exposed.
func birthTime(_ *os.File, info os.FileInfo) (time.Time, error) {
	return info.ModTime(), nil
}
