package ptysession

import (
	"testing"
	"time"
)

// S6: Debounce coalescing. Three one-byte chunks sent back to back, totaling
// the bytes that write "ABC", yield exactly one published update after the
// quiet window elapses.
func TestRunProcessorDebounceCoalescing(t *testing.T) {
	emu := NewEmulator(GridSize{Rows: 24, Cols: 80})
	differ := NewDiffer()
	chunks := make(chan []byte)
	ctrl := make(chan ControlMessage)
	updates := make(chan Update, 8)

	go runProcessor(chunks, ctrl, emu, differ, func(u Update) { updates <- u }, func([]byte) {}, func(ControlMessage) bool { return false })

	for _, b := range []byte("ABC") {
		chunks <- []byte{b}
	}

	select {
	case u := <-updates:
		if u.Keyframe == nil {
			t.Fatalf("expected the first publication to be a keyframe, got %+v", u)
		}
		if len(u.Keyframe.Cells) != 3 {
			t.Fatalf("expected 3 cells, got %d", len(u.Keyframe.Cells))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected exactly one update within the debounce+max-wait window")
	}

	select {
	case u := <-updates:
		t.Fatalf("expected no second update, got %+v", u)
	case <-time.After(100 * time.Millisecond):
	}

	close(chunks)
}

func TestRunProcessorKeyframeRequestSeesResize(t *testing.T) {
	emu := NewEmulator(GridSize{Rows: 24, Cols: 80})
	differ := NewDiffer()
	chunks := make(chan []byte)
	ctrl := make(chan ControlMessage)
	updates := make(chan Update, 8)

	terminate := make(chan struct{})
	go runProcessor(chunks, ctrl, emu, differ, func(u Update) { updates <- u }, func([]byte) {}, func(msg ControlMessage) bool {
		if msg.RequestKeyframe != nil {
			msg.RequestKeyframe.Reply <- differ.Keyframe(emu)
		}
		if msg.Terminate {
			close(terminate)
			return true
		}
		return false
	})

	emu.Resize(GridSize{Rows: 5, Cols: 10})
	reply := make(chan Keyframe, 1)
	ctrl <- ControlMessage{RequestKeyframe: &KeyframeRequest{Reply: reply}}
	kf := <-reply
	if kf.Size != (GridSize{Rows: 5, Cols: 10}) {
		t.Fatalf("keyframe size = %+v, want 5x10", kf.Size)
	}

	ctrl <- ControlMessage{Terminate: true}
	<-terminate
}
