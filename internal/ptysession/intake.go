package ptysession

import (
	"errors"
	"io"
	"runtime"
	"time"
)

// intakeChunkSize matches spec's "up to 1 KiB" reads.
const intakeChunkSize = 1024

// transientRetryDelay is the sleep between retries on a transient read
// error; idlePause is the pause between successful reads to avoid
// busy-waiting.
const transientRetryDelay = 50 * time.Millisecond
const idlePause = 10 * time.Millisecond

// startIntake launches the dedicated blocking-reader OS thread described in
// §4.2. It pins itself to one OS thread for the lifetime of the read loop
// and pushes owned copies of each non-empty read onto chunks. The goroutine
// exits (closing chunks) on EOF or any non-transient error.
func startIntake(r io.Reader, chunks chan<- []byte) {
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(chunks)

		buf := make([]byte, intakeChunkSize)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				cp := make([]byte, n)
				copy(cp, buf[:n])
				chunks <- cp
			}
			if err != nil {
				if isTransientReadErr(err) {
					time.Sleep(transientRetryDelay)
					continue
				}
				return
			}
			time.Sleep(idlePause)
		}
	}()
}

func isTransientReadErr(err error) bool {
	if errors.Is(err, io.ErrShortBuffer) {
		return true
	}
	// PTY masters report closed children as a syscall error (EIO on most
	// platforms) rather than io.EOF; treat everything not explicitly
	// transient as terminal, matching §4.2's "any other error" clause.
	return false
}
