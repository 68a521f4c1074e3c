//go:build linux

package filemeta

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// birthTime returns the creation time of f. Filesystems that do not record
// a birth time fall back to the inode change time.
func birthTime(f *os.File, info os.FileInfo) (time.Time, error) {
	conn, err := f.SyscallConn()
	if err != nil {
		return time.Time{}, err
	}

	var (
		stx     unix.Statx_t
		statErr error
	)

	if err := conn.Control(func(fd uintptr) {
		statErr = unix.Statx(int(fd), "", unix.AT_EMPTY_PATH|unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx)
	}); err != nil {
		return time.Time{}, err
	}

	if statErr == nil && stx.Mask&unix.STATX_BTIME != 0 {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
	}

	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Unix()), nil
	}

	if statErr != nil {
		return time.Time{}, statErr
	}

	return info.ModTime(), nil
}
