package ptysession

import (
	"io"
	"log"
)

// InputMessage is one client's submission to the Input Serializer: either
// raw bytes or a structured key event, never both.
type InputMessage struct {
	ClientID string
	Raw      []byte
	Key      *KeyEvent
}

// runInputSerializer is the single consumer of the input queue (§4.7). It
// is the sole writer of the PTY writer for the lifetime of the session.
// persistentErr is sent to exactly once, when a write error is judged
// non-transient, so the caller can terminate the session.
func runInputSerializer(in <-chan InputMessage, w io.Writer, persistentErr chan<- error) {
	for msg := range in {
		data := msg.Raw
		if msg.Key != nil {
			data = EncodeKey(*msg.Key)
		}
		if len(data) == 0 {
			continue
		}
		if _, err := w.Write(data); err != nil {
			if isTransientWriteErr(err) {
				log.Printf("ptysession: transient write error for client %s: %v", msg.ClientID, err)
				continue
			}
			select {
			case persistentErr <- err:
			default:
			}
			return
		}
	}
}

func isTransientWriteErr(err error) bool {
	// PTY writer errors are essentially always persistent (broken pipe,
	// child exited); §4.7 only requires we not crash on the rare transient
	// case, so this stays conservative rather than guessing syscall-level
	// transience.
	return false
}
