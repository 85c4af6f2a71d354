// Package suite runs the property-based test campaign against a live
// form: for every field it samples the derived generators, drives a
// fill-submit-verify cycle per sample and checks the form's verdict
// against the sample's class. Failing string inputs are shrunk by
// bounded halving before they are reported.
package suite

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"formprobe/internal/logger"
	"formprobe/internal/registry"
	"formprobe/internal/strategy"
	"formprobe/pkg/model"
)

// Page is the form surface the runner drives. *form.Controller
// satisfies it.
type Page interface {
	Reset(ctx context.Context) error
	Apply(ctx context.Context, tc model.TestCase) error
	Submit(ctx context.Context) error
	Verify(ctx context.Context) bool
	CloseModal(ctx context.Context) error
	ExtractConfirmation(ctx context.Context) (map[string]string, error)
	ClearField(ctx context.Context, name model.FieldName) (bool, error)
	Registry() *registry.Registry
}

// Recorder persists trial outcomes. *storage.Store satisfies it; a nil
// recorder drops them.
type Recorder interface {
	Record(runID model.RunID, field model.FieldName, class string, accepted bool, tc model.TestCase) error
}

const (
	classValid   = "valid"
	classInvalid = "invalid"
)

// maxShrinkSteps bounds the halving search for a smaller failing
// input; each step costs a full submit cycle against the live page.
const maxShrinkSteps = 8

// Failure is a property violation: the form's verdict contradicted the
// input's class. It is an expected outcome of a run, distinct from
// infrastructure errors which abort it.
type Failure struct {
	Property string
	Field    model.FieldName
	Value    model.Value
	Shrunk   model.Value
}

func (f *Failure) Error() string {
	s, ok := f.Shrunk.(string)
	if orig, ok2 := f.Value.(string); ok && ok2 && s != orig {
		return fmt.Sprintf("%s: counterexample %q (shrunk from %q)", f.Property, s, orig)
	}
	return fmt.Sprintf("%s: counterexample %v", f.Property, f.Value)
}

// Result is one property's outcome within a run.
type Result struct {
	Name   string
	Trials int
	Err    error
}

// Passed reports whether the property held.
func (r Result) Passed() bool { return r.Err == nil }

// Options configures a run.
type Options struct {
	Trials   int
	Seed     int64
	Recorder Recorder
	Log      logger.Logger
}

// Runner owns one property campaign against one page.
type Runner struct {
	page  Page
	eng   *strategy.Engine
	base  model.Record
	rec   Recorder
	log   logger.Logger
	rng   *rand.Rand
	runID model.RunID

	trials int
}

func NewRunner(page Page, eng *strategy.Engine, base model.Record, opts Options) *Runner {
	log := opts.Log
	if log == nil {
		log = logger.NewNop()
	}
	trials := opts.Trials
	if trials <= 0 {
		trials = 100
	}
	return &Runner{
		page:   page,
		eng:    eng,
		base:   base,
		rec:    opts.Recorder,
		log:    log,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		runID:  model.RunID(uuid.NewString()),
		trials: trials,
	}
}

// RunID identifies this campaign in the trial store.
func (r *Runner) RunID() model.RunID { return r.runID }

// probeFields lists every probed strategy, composite pseudo-fields
// included, in form layout order.
var probeFields = []model.FieldName{
	model.FirstName, model.LastName, model.Email,
	strategy.GenderAndPicture, model.Gender,
	model.Mobile, model.DateOfBirth,
	model.Subjects, model.Hobbies, model.Picture,
	model.Address, strategy.StateAndCity,
}

// Run executes the full campaign: both property classes for every
// field that has them, the round-trip property and the concrete
// scenarios. Property violations land in the results; infrastructure
// errors abort the run.
func (r *Runner) Run(ctx context.Context) ([]Result, error) {
	var results []Result
	add := func(name string, trials int, err error) error {
		var f *Failure
		if err != nil && !asFailure(err, &f) {
			return err
		}
		results = append(results, Result{Name: name, Trials: trials, Err: err})
		if err != nil {
			r.log.Warn("property failed", "property", name, "error", err)
		} else {
			r.log.Info("property held", "property", name, "trials", trials)
		}
		return nil
	}

	for _, field := range probeFields {
		p, ok := r.eng.Pair(field)
		if !ok {
			continue
		}
		if p.Valid != nil {
			name := fmt.Sprintf("accepts valid %s", field)
			if err := add(name, r.trials, r.AcceptanceProperty(ctx, field)); err != nil {
				return results, err
			}
		}
		if p.Invalid != nil {
			name := fmt.Sprintf("rejects invalid %s", field)
			if err := add(name, r.trials, r.RejectionProperty(ctx, field)); err != nil {
				return results, err
			}
		}
	}

	if err := add("round trip", 1, r.RoundTrip(ctx)); err != nil {
		return results, err
	}
	if err := add("scenario: short mobile", 1, r.ScenarioShortMobile(ctx)); err != nil {
		return results, err
	}
	if err := add("scenario: state without city", 1, r.ScenarioStateWithoutCity(ctx)); err != nil {
		return results, err
	}
	return results, nil
}

// AcceptanceProperty checks the form accepts the canonical record with
// the field replaced by any value its valid generator emits.
func (r *Runner) AcceptanceProperty(ctx context.Context, field model.FieldName) error {
	p, ok := r.eng.Pair(field)
	if !ok || p.Valid == nil {
		return fmt.Errorf("field %q has no valid generator", field)
	}
	name := fmt.Sprintf("accepts valid %s", field)

	for i := 0; i < r.trials; i++ {
		v := p.Valid(r.rng)
		tc := r.base.TestCase()
		override(tc, field, v)

		accepted, err := r.runCase(ctx, tc)
		if err != nil {
			return fmt.Errorf("trial %d of %s: %w", i, name, err)
		}
		r.record(field, classValid, accepted, tc)
		if !accepted {
			shrunk := r.shrink(ctx, field, v, false)
			return &Failure{Property: name, Field: field, Value: v, Shrunk: shrunk}
		}
	}
	return nil
}

// RejectionProperty checks the form rejects the canonical record with
// the field replaced by any value its invalid generator emits.
func (r *Runner) RejectionProperty(ctx context.Context, field model.FieldName) error {
	p, ok := r.eng.Pair(field)
	if !ok || p.Invalid == nil {
		return fmt.Errorf("field %q has no invalid generator", field)
	}
	name := fmt.Sprintf("rejects invalid %s", field)

	for i := 0; i < r.trials; i++ {
		v := p.Invalid(r.rng)
		tc := r.base.TestCase()
		override(tc, field, v)

		accepted, err := r.runCase(ctx, tc)
		if err != nil {
			return fmt.Errorf("trial %d of %s: %w", i, name, err)
		}
		r.record(field, classInvalid, accepted, tc)
		if accepted {
			shrunk := r.shrink(ctx, field, v, true)
			return &Failure{Property: name, Field: field, Value: v, Shrunk: shrunk}
		}
	}
	return nil
}

// RoundTrip submits the canonical record and compares every
// confirmation row against the record's expected rendering.
func (r *Runner) RoundTrip(ctx context.Context) error {
	tc := r.base.TestCase()
	if r.page.Registry().AnyFilled() {
		if err := r.page.Reset(ctx); err != nil {
			return err
		}
	}
	if err := r.page.Apply(ctx, tc); err != nil {
		return err
	}
	if err := r.page.Submit(ctx); err != nil {
		return err
	}
	if !r.page.Verify(ctx) {
		return &Failure{Property: "round trip", Value: tc}
	}
	got, err := r.page.ExtractConfirmation(ctx)
	if err != nil {
		return err
	}
	if err := r.page.CloseModal(ctx); err != nil {
		return err
	}

	for label, want := range r.base.ExpectedConfirmation() {
		if got[label] != want {
			return &Failure{
				Property: "round trip",
				Value:    fmt.Sprintf("%s: got %q, want %q", label, got[label], want),
			}
		}
	}
	return nil
}

// runCase drives one full cycle for a test case, resetting first when
// a previous cycle left state behind.
func (r *Runner) runCase(ctx context.Context, tc model.TestCase) (bool, error) {
	if r.page.Registry().AnyFilled() {
		if err := r.page.Reset(ctx); err != nil {
			return false, err
		}
	}
	if err := r.page.Apply(ctx, tc); err != nil {
		return false, err
	}
	if err := r.page.Submit(ctx); err != nil {
		return false, err
	}
	accepted := r.page.Verify(ctx)
	if accepted {
		if err := r.page.CloseModal(ctx); err != nil {
			return false, err
		}
	}
	return accepted, nil
}

// shrink halves a failing string input while the failure persists,
// bounded by maxShrinkSteps. Between attempts only the probed field is
// re-entered: ClearField takes the cheap per-field path when the
// control supports it and Apply skips fields still marked filled.
func (r *Runner) shrink(ctx context.Context, field model.FieldName, v model.Value, acceptedIsFailure bool) model.Value {
	cur, ok := v.(string)
	if !ok {
		return v
	}
	for i := 0; i < maxShrinkSteps && len(cur) > 1; i++ {
		cand := cur[:len(cur)/2]
		accepted, err := r.shrinkStep(ctx, field, cand)
		if err != nil {
			r.log.Warn("shrink step failed", "field", string(field), "error", err)
			break
		}
		if accepted != acceptedIsFailure {
			break
		}
		cur = cand
	}
	return cur
}

func (r *Runner) shrinkStep(ctx context.Context, field model.FieldName, v model.Value) (bool, error) {
	if _, err := r.page.ClearField(ctx, field); err != nil {
		return false, err
	}
	tc := r.base.TestCase()
	override(tc, field, v)
	if err := r.page.Apply(ctx, tc); err != nil {
		return false, err
	}
	if err := r.page.Submit(ctx); err != nil {
		return false, err
	}
	accepted := r.page.Verify(ctx)
	if accepted {
		if err := r.page.CloseModal(ctx); err != nil {
			return false, err
		}
	}
	return accepted, nil
}

// override substitutes a generated value into a test case, expanding
// the composite pseudo-fields into their underlying form fields. A nil
// value removes the field, encoding absence.
func override(tc model.TestCase, field model.FieldName, v model.Value) {
	switch field {
	case strategy.GenderAndPicture:
		if v == nil {
			delete(tc, model.Gender)
			delete(tc, model.Picture)
			return
		}
		gp := v.(model.GenderPicture)
		tc[model.Gender] = gp.Gender
		tc[model.Picture] = gp.Picture
	case strategy.StateAndCity:
		if v == nil {
			delete(tc, model.State)
			delete(tc, model.City)
			return
		}
		sc := v.(model.StateCity)
		setOrDelete(tc, model.State, sc.State)
		setOrDelete(tc, model.City, sc.City)
	default:
		if v == nil {
			delete(tc, field)
			return
		}
		tc[field] = v
	}
}

func setOrDelete(tc model.TestCase, field model.FieldName, s string) {
	if s == "" {
		delete(tc, field)
		return
	}
	tc[field] = s
}

func (r *Runner) record(field model.FieldName, class string, accepted bool, tc model.TestCase) {
	if r.rec == nil {
		return
	}
	if err := r.rec.Record(r.runID, field, class, accepted, tc); err != nil {
		r.log.Warn("trial record failed", "field", string(field), "error", err)
	}
}

func asFailure(err error, target **Failure) bool {
	return errors.As(err, target)
}
