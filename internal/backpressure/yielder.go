// Package backpressure implements the cooperative main-thread yielding
// contract (spec.md section 5): every 100 items a pipeline stage
// processes, it yields control so other work can progress, the Go
// analogue of the spec's single-threaded `delay(0)`-equivalent.
// Grounded on internal/archiver/lagmonitor.go's LagMonitor.WaitForLag
// poll-and-wait loop, generalized from "wait until replica lag drops"
// to "yield once, unconditionally, on a fixed item cadence".
package backpressure

import (
	"context"
	"runtime"
)

// Yielder implements internal/pipeline.Yielder.
type Yielder struct {
	// everyN is the item cadence; exposed for tests, defaults to 100
	// (spec.md section 5's tuning parameter) via New.
	everyN int
}

// New creates a Yielder using the spec's 100-item default cadence.
func New() *Yielder {
	return &Yielder{everyN: 100}
}

// NewWithCadence creates a Yielder with a caller-chosen cadence, for
// tests that want to observe yielding without processing 100 items.
func NewWithCadence(everyN int) *Yielder {
	if everyN <= 0 {
		everyN = 100
	}
	return &Yielder{everyN: everyN}
}

// EveryN returns the configured item cadence.
func (y *Yielder) EveryN() int {
	return y.everyN
}

// Yield cooperatively hands control back to the Go scheduler, the
// single-threaded cooperative language's `delay(0)` equivalent (spec.md
// section 5, "main-thread yielding"), unless ctx is already done, in
// which case there is nothing left to yield for.
func (y *Yielder) Yield(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	runtime.Gosched()
}
