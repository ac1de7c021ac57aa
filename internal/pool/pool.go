// Package pool provides the bounded process pool that admits jobs into a
// fixed number of slots.
//
// Admission is polling based: NextAvailableSlot re-checks the slots until one
// is empty or holds a terminal job. Occupants that expose a Done channel wake
// waiting callers as soon as they finish; the ticker covers the rest. A job is
// started only after its slot has been reserved, and a slot is only released
// once its job is terminal, so no more than Size jobs are ever running at once.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AndreyAkinshin/simcheck/internal/job"
)

// DefaultPollInterval is how often waiting callers re-check the slots when no
// occupant has signalled completion.
const DefaultPollInterval = 50 * time.Millisecond

// notifier is implemented by jobs that can signal completion. Done may be
// closed before the job reports a terminal status (a retrying job moving to
// its next attempt), so the pool re-checks Status after every wake.
type notifier interface {
	job.Runnable
	Done() <-chan struct{}
}

var (
	// ErrSlotOccupied is returned by Place when the slot still holds a job
	// that has not reached a terminal state. It indicates a scheduling bug.
	ErrSlotOccupied = errors.New("slot occupied by a non-terminal job")

	// ErrSlotOutOfRange is returned by Place for an invalid slot index.
	ErrSlotOutOfRange = errors.New("slot index out of range")
)

// Hook observes a job as it enters or leaves the pool.
type Hook func(j job.Runnable)

// Option configures a Pool.
type Option func(*Pool)

// WithPollInterval sets the admission polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithOnStart registers a hook called by Dispatch after each job is started.
func WithOnStart(h Hook) Option {
	return func(p *Pool) { p.onStart = h }
}

// WithOnReclaim registers a hook called once for every terminal job the pool
// joins and removes from its slot.
func WithOnReclaim(h Hook) Option {
	return func(p *Pool) { p.onReclaim = h }
}

// Pool is a fixed set of job slots. The zero value is not usable; use New.
type Pool struct {
	mu       sync.Mutex
	slots    []job.Runnable
	reserved []bool
	changed  chan struct{} // closed and replaced whenever an occupant finishes

	pollInterval time.Duration
	onStart      Hook
	onReclaim    Hook
}

// New allocates a pool with n empty slots. n is clamped to at least 1.
func New(n int, opts ...Option) *Pool {
	if n < 1 {
		n = 1
	}
	p := &Pool{
		slots:        make([]job.Runnable, n),
		reserved:     make([]bool, n),
		changed:      make(chan struct{}),
		pollInterval: DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return len(p.slots)
}

// NextAvailableSlot blocks until a slot is free and reserves it for the
// caller. A slot holding a terminal job is reclaimed immediately. No ordering
// is guaranteed about which free slot is returned.
func (p *Pool) NextAvailableSlot(ctx context.Context) (int, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		changed := p.changes()
		slot, reclaimed, ok := p.tryReserve()
		p.notifyReclaimed(reclaimed)
		if ok {
			return slot, nil
		}
		select {
		case <-ctx.Done():
			return -1, ctx.Err()
		case <-changed:
		case <-ticker.C:
		}
	}
}

func (p *Pool) tryReserve() (int, []job.Runnable, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, j := range p.slots {
		if p.reserved[i] {
			continue
		}
		if j == nil {
			p.reserved[i] = true
			return i, nil, true
		}
		if j.Status().Terminal() {
			j.Wait()
			p.slots[i] = nil
			p.reserved[i] = true
			return i, []job.Runnable{j}, true
		}
	}
	return -1, nil, false
}

// Place binds a started or startable job to a slot. Placing into a slot whose
// job is not terminal is an invariant violation and returns ErrSlotOccupied.
func (p *Pool) Place(slot int, j job.Runnable) error {
	p.mu.Lock()

	if slot < 0 || slot >= len(p.slots) {
		p.mu.Unlock()
		return fmt.Errorf("%w: %d (size %d)", ErrSlotOutOfRange, slot, len(p.slots))
	}

	var reclaimed []job.Runnable
	if cur := p.slots[slot]; cur != nil {
		if !cur.Status().Terminal() {
			p.mu.Unlock()
			return fmt.Errorf("%w: slot %d holds %q, cannot place %q", ErrSlotOccupied, slot, cur.Name(), j.Name())
		}
		cur.Wait()
		reclaimed = append(reclaimed, cur)
	}
	p.slots[slot] = j
	p.reserved[slot] = false
	watch := false
	n, ok := j.(notifier)
	if ok {
		watch = j.Status() != job.NotStarted
	}
	p.mu.Unlock()

	if watch {
		go p.watch(n)
	}
	p.notifyReclaimed(reclaimed)
	return nil
}

// watch wakes waiting callers once n reaches a terminal status.
func (p *Pool) watch(n notifier) {
	for {
		<-n.Done()
		if n.Status().Terminal() {
			p.broadcast()
			return
		}
	}
}

func (p *Pool) changes() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.changed
}

func (p *Pool) broadcast() {
	p.mu.Lock()
	close(p.changed)
	p.changed = make(chan struct{})
	p.mu.Unlock()
}

// Drain blocks until every occupied slot's job is terminal, joining each one
// and emptying its slot.
func (p *Pool) Drain(ctx context.Context) error {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		changed := p.changes()
		pending, reclaimed := p.reclaimTerminal()
		p.notifyReclaimed(reclaimed)
		if pending == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
		case <-ticker.C:
		}
	}
}

func (p *Pool) reclaimTerminal() (int, []job.Runnable) {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := 0
	var reclaimed []job.Runnable
	for i, j := range p.slots {
		if j == nil {
			continue
		}
		if !j.Status().Terminal() {
			pending++
			continue
		}
		j.Wait()
		p.slots[i] = nil
		reclaimed = append(reclaimed, j)
	}
	return pending, reclaimed
}

// Dispatch starts every job as slots become available, then drains the pool.
//
// A job whose Start fails still occupies its slot; it reports Failed and is
// reclaimed on the next poll. Only context cancellation and slot invariant
// violations are returned as errors.
func (p *Pool) Dispatch(ctx context.Context, jobs []job.Runnable) error {
	for _, j := range jobs {
		slot, err := p.NextAvailableSlot(ctx)
		if err != nil {
			return err
		}
		_ = j.Start()
		if err := p.Place(slot, j); err != nil {
			return err
		}
		if p.onStart != nil {
			p.onStart(j)
		}
	}
	return p.Drain(ctx)
}

// Running returns the number of occupants that are not yet terminal.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, j := range p.slots {
		if j != nil && !j.Status().Terminal() {
			n++
		}
	}
	return n
}

// KillAll calls Die on every occupant. It is used for abrupt teardown; the
// killed jobs are reclaimed by the next Drain or NextAvailableSlot.
func (p *Pool) KillAll() {
	p.mu.Lock()
	jobs := make([]job.Runnable, 0, len(p.slots))
	for _, j := range p.slots {
		if j != nil {
			jobs = append(jobs, j)
		}
	}
	p.mu.Unlock()

	for _, j := range jobs {
		j.Die()
	}
}

func (p *Pool) notifyReclaimed(jobs []job.Runnable) {
	if p.onReclaim == nil {
		return
	}
	for _, j := range jobs {
		p.onReclaim(j)
	}
}
