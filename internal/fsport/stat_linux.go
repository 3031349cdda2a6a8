//go:build linux

package fsport

import (
	"os"
	"syscall"
	"time"
)

func statIdentity(info os.FileInfo) (dev, ino uint64, ok bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return uint64(st.Dev), st.Ino, true
}

func statTimes(info os.FileInfo) (ctime, atime time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return time.Time{}, time.Time{}
	}
	return time.Unix(st.Ctim.Unix()), time.Unix(st.Atim.Unix())
}
