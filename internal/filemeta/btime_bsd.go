//go:build darwin || freebsd || netbsd

package filemeta

import (
	"os"
	"syscall"
	"time"
)

func birthTime(_ *os.File, info os.FileInfo) (time.Time, error) {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Birthtimespec.Unix()), nil
	}

	return info.ModTime(), nil
}
