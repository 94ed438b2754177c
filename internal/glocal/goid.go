// Package glocal approximates per-goroutine (per-"thread") identity.
//
// Go exposes no public thread-local storage API and goroutines migrate
// freely across OS threads, so "thread identity" for the ambient
// span-stack resolution in spec.md §4.E is taken to mean goroutine
// identity. There is no third-party goroutine-local-storage library
// anywhere in the reference corpus to ground this on, so it is one of
// the few places this module falls back to the standard library: it
// parses the goroutine id out of the header line of runtime.Stack, the
// same technique every "goroutine-local storage" shim in the wild uses
// in the absence of a runtime-exposed id.
package glocal

import (
	"runtime"
	"strconv"
	"sync"
)

var stackBufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, 64)
		return &buf
	},
}

// ID returns an identifier for the calling goroutine, stable for the
// life of that goroutine and distinct from every other live goroutine's.
func ID() int64 {
	bufp := stackBufPool.Get().(*[]byte)
	defer stackBufPool.Put(bufp)

	buf := *bufp
	for {
		n := runtime.Stack(buf, false)
		if n < len(buf) {
			buf = buf[:n]
			break
		}
		buf = make([]byte, len(buf)*2)
	}
	*bufp = buf

	// Header line looks like: "goroutine 18 [running]:\n"
	const prefix = "goroutine "
	line := buf
	if len(line) > len(prefix) && string(line[:len(prefix)]) == prefix {
		line = line[len(prefix):]
	}
	end := 0
	for end < len(line) && line[end] >= '0' && line[end] <= '9' {
		end++
	}
	id, err := strconv.ParseInt(string(line[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
