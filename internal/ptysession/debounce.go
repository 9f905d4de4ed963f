package ptysession

import "time"

// debounceInterval is the trailing-edge quiet window from §4.3.
const debounceInterval = 16 * time.Millisecond

// maxWait bounds latency under sustained output streams per §9's
// explicit invitation to add a cap alongside the trailing-edge debounce.
const maxWait = 200 * time.Millisecond

// debouncer accumulates byte chunks and decides when a batch is ready.
// It is not safe for concurrent use; the processor goroutine owns it.
type debouncer struct {
	pending      []byte
	firstPending time.Time
}

// add appends a new chunk to the pending batch.
func (d *debouncer) add(chunk []byte) {
	if len(d.pending) == 0 {
		d.firstPending = time.Now()
	}
	d.pending = append(d.pending, chunk...)
}

// hasPending reports whether there is unflushed data.
func (d *debouncer) hasPending() bool {
	return len(d.pending) > 0
}

// take returns and clears the pending buffer.
func (d *debouncer) take() []byte {
	b := d.pending
	d.pending = nil
	return b
}

// runProcessor is the debounce/coalesce + apply + diff + publish loop of
// §4.3–§4.5. It owns the emulator and differ exclusively; control messages
// needing emulator access are funneled through ctrl so they serialize with
// batch processing rather than racing it. handleCtrl returns true when the
// session should terminate (a Terminate message was handled).
func runProcessor(chunks <-chan []byte, ctrl <-chan ControlMessage, emu *Emulator, differ *Differ, publish func(Update), publishRaw func([]byte), handleCtrl func(ControlMessage) bool) {
	d := &debouncer{}
	timer := time.NewTimer(debounceInterval)
	if !timer.Stop() {
		<-timer.C
	}
	timerRunning := false
	var maxWaitDeadline time.Time

	resetTimer := func(dur time.Duration) {
		if timerRunning && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(dur)
		timerRunning = true
	}

	flush := func() {
		if !d.hasPending() {
			return
		}
		batch := d.take()
		timerRunning = false
		maxWaitDeadline = time.Time{}
		emu.Write(batch)
		if u, ok := differ.Diff(emu); ok {
			publish(u)
		}
	}

	for {
		select {
		case chunk, ok := <-chunks:
			if !ok {
				flush()
				return
			}
			publishRaw(chunk)
			d.add(chunk)
			if maxWaitDeadline.IsZero() {
				maxWaitDeadline = d.firstPending.Add(maxWait)
			}
			wait := debounceInterval
			if untilMax := time.Until(maxWaitDeadline); untilMax < wait {
				wait = untilMax
			}
			if wait <= 0 {
				flush()
				continue
			}
			resetTimer(wait)

		case <-timer.C:
			timerRunning = false
			flush()

		case msg := <-ctrl:
			if handleCtrl(msg) {
				return
			}
		}
	}
}
