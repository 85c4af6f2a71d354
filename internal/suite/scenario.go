package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"formprobe/internal/fixtures"
	"formprobe/pkg/model"
)

// CanonicalRecord builds the deterministic known-good record every
// property mutates: fixed text identity plus the lexicographically
// first element of each discovered domain. It fails when a domain the
// form requires came back empty, since no valid submission can exist
// then.
func CanonicalRecord(ds model.DomainSet, lib *fixtures.Library, now time.Time) (model.Record, error) {
	if len(ds.Genders) == 0 {
		return model.Record{}, errors.New("no genders discovered")
	}
	if len(ds.Subjects) == 0 {
		return model.Record{}, errors.New("no subjects discovered")
	}
	states := ds.StateCityMap.Parents()
	if len(states) == 0 {
		return model.Record{}, errors.New("no states discovered")
	}

	gender := ds.Genders[0]
	pics, err := lib.Pictures(gender)
	if err != nil {
		return model.Record{}, fmt.Errorf("picture fixtures for %q: %w", gender, err)
	}

	subjects := ds.Subjects
	if len(subjects) > 5 {
		subjects = subjects[:5]
	}
	state := states[0]

	return model.Record{
		FirstName:   "Bob",
		LastName:    "Alice",
		Email:       "bob.alice@example.com",
		Gender:      gender,
		Picture:     pics[0],
		Mobile:      "1234567890",
		DateOfBirth: time.Date(now.Year()-18, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Subjects:    append([]string{}, subjects...),
		Hobbies:     append([]string{}, ds.Hobbies...),
		Address:     "Hazrat Nizamuddin, New Delhi",
		State:       state,
		City:        ds.StateCityMap[state][0],
	}, nil
}

// ScenarioValidSubmission submits the canonical record and checks the
// confirmation surface echoes it back, formatting transforms included.
func (r *Runner) ScenarioValidSubmission(ctx context.Context) error {
	return r.RoundTrip(ctx)
}

// ScenarioShortMobile submits the canonical record with a nine-short
// mobile number and expects a rejection.
func (r *Runner) ScenarioShortMobile(ctx context.Context) error {
	tc := r.base.TestCase()
	tc[model.Mobile] = "12345"
	return r.expectRejected(ctx, "short mobile", tc)
}

// ScenarioStateWithoutCity submits the canonical record with a state
// selected but no city and expects a rejection.
func (r *Runner) ScenarioStateWithoutCity(ctx context.Context) error {
	tc := r.base.TestCase()
	delete(tc, model.City)
	return r.expectRejected(ctx, "state without city", tc)
}

func (r *Runner) expectRejected(ctx context.Context, name string, tc model.TestCase) error {
	accepted, err := r.runCase(ctx, tc)
	if err != nil {
		return fmt.Errorf("scenario %q: %w", name, err)
	}
	if accepted {
		return &Failure{Property: "scenario: " + name, Value: tc}
	}
	return nil
}
