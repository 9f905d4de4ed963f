package ptysession

import "log"

// ResizeRequest asks the control plane to resize the PTY and emulator.
// Done, if non-nil, receives the result (nil on success).
type ResizeRequest struct {
	Size GridSize
	Done chan error
}

// KeyframeRequest asks the control plane to synthesize a keyframe from the
// emulator's current state, independent of the differ's stored snapshot,
// per §4.6's request/response path. Reply is a one-shot channel.
type KeyframeRequest struct {
	Reply chan Keyframe
}

// ControlMessage is the union handled by the Control Plane in arrival
// order, per §4.8. Exactly one field is set.
type ControlMessage struct {
	Resize          *ResizeRequest
	Terminate       bool
	RequestKeyframe *KeyframeRequest
}

// controlHandler builds the closure runProcessor invokes for each
// ControlMessage. It has exclusive access to emu/differ because it only
// ever runs on the processor goroutine, serialized with batch processing —
// this is what gives resize its "applied atomically w.r.t. subsequent data
// batches" guarantee from §5.
func controlHandler(emu *Emulator, differ *Differ, child *Child, publishSize func(GridSize)) func(ControlMessage) bool {
	return func(msg ControlMessage) bool {
		switch {
		case msg.Resize != nil:
			handleResize(msg.Resize, emu, child, publishSize)
		case msg.RequestKeyframe != nil:
			handleKeyframeRequest(msg.RequestKeyframe, emu, differ)
		case msg.Terminate:
			return true
		}
		return false
	}
}

func handleResize(req *ResizeRequest, emu *Emulator, child *Child, publishSize func(GridSize)) {
	if err := child.Resize(req.Size); err != nil {
		log.Printf("ptysession: resize to %dx%d rejected: %v", req.Size.Rows, req.Size.Cols, err)
		if req.Done != nil {
			req.Done <- err
		}
		return
	}
	emu.Resize(req.Size)
	if req.Done != nil {
		req.Done <- nil
	}
	publishSize(req.Size)
}

func handleKeyframeRequest(req *KeyframeRequest, emu *Emulator, differ *Differ) {
	kf := differ.Keyframe(emu)
	select {
	case req.Reply <- kf:
	default:
		log.Printf("ptysession: keyframe request reply channel not ready, dropping")
	}
}
