//go:build windows

package filemeta

import (
	"os"
	"syscall"
	"time"
)

func birthTime(_ *os.File, info os.FileInfo) (time.Time, error) {
	if data, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return time.Unix(0, data.CreationTime.Nanoseconds()), nil
	}

	return info.ModTime(), nil
}
