package host

import "runtime"

// goroutineID returns the calling goroutine's id, parsed from the first
// line of its stack trace: "goroutine 123 [running]:".
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return parseGID(buf[:n])
}

// CurrentThreadID exposes the calling goroutine's id for storage bookkeeping.
func CurrentThreadID() int64 {
	return goroutineID()
}

func parseGID(buf []byte) int64 {
	const prefix = "goroutine "
	if len(buf) < len(prefix) || string(buf[:len(prefix)]) != prefix {
		return 0
	}

	var gid int64
	for _, c := range buf[len(prefix):] {
		if c < '0' || c > '9' {
			break
		}
		gid = gid*10 + int64(c-'0')
	}
	return gid
}
