package ptysession

import (
	"bytes"
	"testing"
	"time"
)

func TestRunInputSerializerOrdering(t *testing.T) {
	in := make(chan InputMessage, 8)
	var buf bytes.Buffer
	persistentErr := make(chan error, 1)

	done := make(chan struct{})
	go func() {
		runInputSerializer(in, &buf, persistentErr)
		close(done)
	}()

	in <- InputMessage{ClientID: "c1", Raw: []byte("ab")}
	in <- InputMessage{ClientID: "c1", Key: &KeyEvent{Code: NamedKey(KeyEnter)}}
	in <- InputMessage{ClientID: "c2", Raw: []byte("z")}
	close(in)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("serializer did not drain")
	}

	if got := buf.String(); got != "ab\rz" {
		t.Fatalf("written bytes = %q, want %q", got, "ab\rz")
	}
}
