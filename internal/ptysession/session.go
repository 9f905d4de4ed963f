package ptysession

import (
	"fmt"
	"sync"
)

// inputQueueCapacity and controlQueueCapacity back the "unbounded FIFO"
// queues of §5 with a large buffer; producers never block in practice
// because readers drain continuously for the life of the session.
const inputQueueCapacity = 4096
const controlQueueCapacity = 256

// Session is the PTY Session Engine of §1/§6: it owns the child process,
// the PTY master, the VT emulator, the previous snapshot, and the fan-out
// hub. Construct it with Construct and run it with Start.
type Session struct {
	ID string

	child  *Child
	emu    *Emulator
	differ *Differ
	hub    *Hub

	InputTx   chan<- InputMessage
	ControlTx chan<- ControlMessage

	inputRx   chan InputMessage
	controlRx chan ControlMessage
	chunks    chan []byte

	sizeMu   sync.Mutex
	sizeSubs map[chan GridSize]struct{}

	doneOnce sync.Once
	done     chan struct{}
}

// Construct spawns agent under a PTY at the given initial size and wires up
// the processing pipeline, per §6's external contract. The allow-list check
// named in §6 is the caller's responsibility (cmd/agentmuxd's run and serve
// commands check config.Config.AgentAllowed), not the core's.
func Construct(sessionID, agent string, args []string, extraArgs string, size GridSize, debugOutput bool) (*Session, error) {
	size = resolveSize(size)
	child, err := SpawnChild(agent, args, extraArgs, size)
	if err != nil {
		return nil, fmt.Errorf("ptysession: construct %s: %w", sessionID, err)
	}

	input := make(chan InputMessage, inputQueueCapacity)
	control := make(chan ControlMessage, controlQueueCapacity)

	s := &Session{
		ID:        sessionID,
		child:     child,
		emu:       NewEmulator(size),
		differ:    NewDiffer(),
		hub:       NewHub(debugOutput),
		InputTx:   input,
		ControlTx: control,
		inputRx:   input,
		controlRx: control,
		chunks:    make(chan []byte, 256),
		sizeSubs:  map[chan GridSize]struct{}{},
		done:      make(chan struct{}),
	}
	return s, nil
}

// Subscribe registers a new grid/raw-output subscriber on the fan-out hub.
func (s *Session) Subscribe() *Subscriber { return s.hub.Subscribe() }

// Unsubscribe removes a subscriber previously returned by Subscribe.
func (s *Session) Unsubscribe(sub *Subscriber) { s.hub.Unsubscribe(sub) }

// SubscribeSize registers for size-change broadcasts. The returned function
// unregisters it.
func (s *Session) SubscribeSize() (<-chan GridSize, func()) {
	ch := make(chan GridSize, 8)
	s.sizeMu.Lock()
	s.sizeSubs[ch] = struct{}{}
	s.sizeMu.Unlock()
	return ch, func() {
		s.sizeMu.Lock()
		defer s.sizeMu.Unlock()
		if _, ok := s.sizeSubs[ch]; ok {
			delete(s.sizeSubs, ch)
			close(ch)
		}
	}
}

func (s *Session) publishSize(size GridSize) {
	s.sizeMu.Lock()
	defer s.sizeMu.Unlock()
	for ch := range s.sizeSubs {
		select {
		case ch <- size:
		default:
		}
	}
}

// RequestKeyframe synthesizes a keyframe from the emulator's current state
// via the control plane, per §4.6. It blocks until the control task
// services the request or the session terminates.
func (s *Session) RequestKeyframe() (Keyframe, error) {
	reply := make(chan Keyframe, 1)
	select {
	case s.controlRx <- ControlMessage{RequestKeyframe: &KeyframeRequest{Reply: reply}}:
	case <-s.done:
		return Keyframe{}, fmt.Errorf("ptysession: session %s terminated", s.ID)
	}
	select {
	case kf := <-reply:
		return kf, nil
	case <-s.done:
		return Keyframe{}, fmt.Errorf("ptysession: session %s terminated", s.ID)
	}
}

// Resize requests a PTY/emulator resize via the control plane and waits for
// the result.
func (s *Session) Resize(size GridSize) error {
	done := make(chan error, 1)
	select {
	case s.controlRx <- ControlMessage{Resize: &ResizeRequest{Size: size, Done: done}}:
	case <-s.done:
		return fmt.Errorf("ptysession: session %s terminated", s.ID)
	}
	select {
	case err := <-done:
		return err
	case <-s.done:
		return fmt.Errorf("ptysession: session %s terminated", s.ID)
	}
}

// Terminate requests orderly shutdown per §4.8/§5.
func (s *Session) Terminate() {
	select {
	case s.controlRx <- ControlMessage{Terminate: true}:
	case <-s.done:
	}
}

// Done returns a channel closed once the session has fully terminated.
func (s *Session) Done() <-chan struct{} { return s.done }

// Start runs the session's pipeline until the child exits, a fatal error
// occurs, or Terminate is called, then returns. Per §6 this blocks for the
// lifetime of the session; call it on its own goroutine if the caller needs
// to keep doing other things.
func (s *Session) Start() error {
	defer s.shutdown()

	startIntake(s.child.Pty, s.chunks)

	persistentWriteErr := make(chan error, 1)
	go runInputSerializer(s.inputRx, s.child.Pty, persistentWriteErr)

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case err := <-persistentWriteErr:
			_ = err
			select {
			case s.controlRx <- ControlMessage{Terminate: true}:
			default:
			}
		case <-stopWatch:
		}
	}()

	handleCtrl := controlHandler(s.emu, s.differ, s.child, s.publishSize)
	runProcessor(s.chunks, s.controlRx, s.emu, s.differ, s.hub.Publish, s.hub.PublishRaw, handleCtrl)

	return nil
}

func (s *Session) shutdown() {
	s.doneOnce.Do(func() {
		_ = s.child.Kill()
		_ = s.child.Close()
		s.hub.Close()
		s.sizeMu.Lock()
		for ch := range s.sizeSubs {
			close(ch)
			delete(s.sizeSubs, ch)
		}
		s.sizeMu.Unlock()
		close(s.done)
	})
}
