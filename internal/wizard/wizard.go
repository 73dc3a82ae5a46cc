// Package wizard drives multi-step draft creation flows. The engine owns
// step ordering and draft lifecycle; instantiations supply the form type,
// per-step validation and the API calls that persist it.
package wizard

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
)

// ErrResumeRequired is returned by Begin when an open draft already exists.
// The caller must resolve it with Resume or Discard before editing.
var ErrResumeRequired = errors.New("wizard: open draft awaits resume or discard")

// Step is one wizard page. Valid is a pure predicate over the form and must
// not perform I/O.
type Step[F any] struct {
	Number int
	Name   string
	Valid  func(form F) bool
}

// Draft is a server-side draft record hydrated into the engine.
type Draft[F any] struct {
	ID   int64
	Form F
}

// Store persists drafts for one wizard instantiation.
type Store[F any] interface {
	// ListOpen returns un-submitted drafts, newest first.
	ListOpen(ctx context.Context) ([]Draft[F], error)
	// Create starts an empty draft.
	Create(ctx context.Context) (Draft[F], error)
	// Save persists the fields relevant to step and returns the
	// server-materialized form.
	Save(ctx context.Context, draftID int64, step int, form F) (F, error)
}

// Submitter finalizes a draft into a real record.
type Submitter[F, R any] func(ctx context.Context, draftID int64, form F) (R, error)

// LockPolicy can pin the wizard to a single step based on form state.
// Returning locked=false leaves the default prerequisite rule in force.
type LockPolicy[F any] func(form F) (only int, locked bool)

type Params[F, R any] struct {
	Steps  []Step[F]
	Store  Store[F]
	Submit Submitter[F, R]
	Lock   LockPolicy[F]
	Logger *logger.Logger
}

// Engine is a stateful wizard over form type F producing a record of type R.
// It is safe for concurrent use.
type Engine[F, R any] struct {
	steps  []Step[F]
	store  Store[F]
	submit Submitter[F, R]
	lock   LockPolicy[F]
	logg   *logger.Logger

	mu      sync.Mutex
	started bool
	draftID int64
	form    F
	current int
	pending *Draft[F]
}

func New[F, R any](params Params[F, R]) (*Engine[F, R], error) {
	if len(params.Steps) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wizard requires at least one step")
	}
	for i, s := range params.Steps {
		if s.Number != i+1 {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "wizard steps must be numbered 1..n in order")
		}
		if s.Valid == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "wizard step missing validator")
		}
	}
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wizard requires a store")
	}
	if params.Submit == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wizard requires a submitter")
	}
	return &Engine[F, R]{
		steps:  params.Steps,
		store:  params.Store,
		submit: params.Submit,
		lock:   params.Lock,
		logg:   params.Logger,
	}, nil
}

// Begin starts a fresh draft, unless an open draft exists, in which case it
// returns ErrResumeRequired and exposes the newest draft via PendingDraft.
func (e *Engine[F, R]) Begin(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return pkgerrors.New(pkgerrors.CodeConflict, "wizard already started")
	}

	open, err := e.store.ListOpen(ctx)
	if err != nil {
		return err
	}
	if len(open) > 0 {
		draft := open[0]
		e.pending = &draft
		return ErrResumeRequired
	}
	return e.startFreshLocked(ctx)
}

func (e *Engine[F, R]) startFreshLocked(ctx context.Context) error {
	draft, err := e.store.Create(ctx)
	if err != nil {
		return err
	}
	e.hydrateLocked(draft)
	return nil
}

// PendingDraft returns the open draft reported by Begin, if any.
func (e *Engine[F, R]) PendingDraft() (Draft[F], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		var zero Draft[F]
		return zero, false
	}
	return *e.pending, true
}

// Resume hydrates the engine from an existing draft.
func (e *Engine[F, R]) Resume(draft Draft[F]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hydrateLocked(draft)
}

// Discard abandons the pending draft and starts a fresh one.
func (e *Engine[F, R]) Discard(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return pkgerrors.New(pkgerrors.CodeConflict, "wizard already started")
	}
	e.pending = nil
	return e.startFreshLocked(ctx)
}

func (e *Engine[F, R]) hydrateLocked(draft Draft[F]) {
	e.draftID = draft.ID
	e.form = draft.Form
	e.current = e.firstEnterableLocked()
	e.started = true
	e.pending = nil
}

// firstEnterableLocked resumes at the deepest step whose prerequisites
// hold, or at the pinned step when a lock policy is in force.
func (e *Engine[F, R]) firstEnterableLocked() int {
	if e.lock != nil {
		if only, locked := e.lock(e.form); locked {
			return only
		}
	}
	step := 1
	for step < len(e.steps) && e.canEnterLocked(step+1) {
		step++
	}
	return step
}

// Current returns the active step number, or 0 before Begin/Resume.
func (e *Engine[F, R]) Current() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return 0
	}
	return e.current
}

// Form returns a copy of the working form.
func (e *Engine[F, R]) Form() F {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.form
}

// UpdateForm applies a local edit. Nothing is persisted until the next
// Advance, Back or Goto.
func (e *Engine[F, R]) UpdateForm(edit func(form *F)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	edit(&e.form)
}

// CanEnter reports whether step n is reachable: every predicate before it
// must hold, unless a lock policy pins the wizard to one step.
func (e *Engine[F, R]) CanEnter(n int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canEnterLocked(n)
}

func (e *Engine[F, R]) canEnterLocked(n int) bool {
	if n < 1 || n > len(e.steps) {
		return false
	}
	if e.lock != nil {
		if only, locked := e.lock(e.form); locked {
			return n == only
		}
	}
	for _, s := range e.steps[:n-1] {
		if !s.Valid(e.form) {
			return false
		}
	}
	return true
}

// Advance validates the current step, persists it and moves forward. On save
// failure the step does not change.
func (e *Engine[F, R]) Advance(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireStartedLocked(); err != nil {
		return err
	}
	step := e.steps[e.current-1]
	if !step.Valid(e.form) {
		return pkgerrors.New(pkgerrors.CodeValidation, "complete this step before continuing").
			WithDetails(map[string]string{"step": step.Name})
	}
	if err := e.saveLocked(ctx); err != nil {
		return err
	}
	if e.current < len(e.steps) {
		e.current++
	}
	return nil
}

// Back persists the current form and moves one step back. No validation is
// required to go backwards.
func (e *Engine[F, R]) Back(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireStartedLocked(); err != nil {
		return err
	}
	if err := e.saveLocked(ctx); err != nil {
		return err
	}
	if e.current > 1 {
		e.current--
	}
	return nil
}

// Goto jumps directly to step n. Unreachable steps are rejected locally
// without touching the network.
func (e *Engine[F, R]) Goto(ctx context.Context, n int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.requireStartedLocked(); err != nil {
		return err
	}
	if !e.canEnterLocked(n) {
		return pkgerrors.New(pkgerrors.CodeValidation, "earlier steps must be completed first").
			WithDetails(map[string]string{"step": e.steps[stepIndex(n, len(e.steps))].Name})
	}
	if err := e.saveLocked(ctx); err != nil {
		return err
	}
	e.current = n
	return nil
}

// Submit finalizes the draft. The last step must validate; the submitter
// carries any out-of-band confirmation the flow requires.
func (e *Engine[F, R]) Submit(ctx context.Context) (R, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	var zero R
	if err := e.requireStartedLocked(); err != nil {
		return zero, err
	}
	last := e.steps[len(e.steps)-1]
	if !last.Valid(e.form) {
		return zero, pkgerrors.New(pkgerrors.CodeValidation, "complete the final step before submitting").
			WithDetails(map[string]string{"step": last.Name})
	}
	if err := e.saveLocked(ctx); err != nil {
		return zero, err
	}
	result, err := e.submit(ctx, e.draftID, e.form)
	if err != nil {
		return zero, err
	}
	e.started = false
	return result, nil
}

func (e *Engine[F, R]) requireStartedLocked() error {
	if !e.started {
		return pkgerrors.New(pkgerrors.CodeConflict, "wizard not started")
	}
	return nil
}

func (e *Engine[F, R]) saveLocked(ctx context.Context) error {
	saved, err := e.store.Save(ctx, e.draftID, e.current, e.form)
	if err != nil {
		if e.logg != nil {
			e.logg.Warn(e.logg.WithField(ctx, "draft_id", e.draftID), "draft save failed: "+err.Error())
		}
		return err
	}
	e.form = saved
	return nil
}

func stepIndex(n, max int) int {
	if n < 1 {
		return 0
	}
	if n > max {
		return max - 1
	}
	return n - 1
}
