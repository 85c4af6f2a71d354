package suite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formprobe/internal/fixtures"
	"formprobe/internal/registry"
	"formprobe/internal/strategy"
	"formprobe/pkg/model"
)

var fixedNow = time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)

func testDomains() model.DomainSet {
	return model.DomainSet{
		Genders:  model.Domain{"Female", "Male", "Other"},
		Hobbies:  model.Domain{"Music", "Reading", "Sports"},
		Subjects: model.Domain{"Arts", "Computer Science", "Maths", "Physics"},
		StateCityMap: model.Hierarchy{
			"Haryana": {"Karnal", "Panipat"},
			"NCR":     {"Delhi", "Gurgaon", "Noida"},
		},
	}
}

func testLibrary(t *testing.T) *fixtures.Library {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"pictures/Female/f1.jpeg",
		"pictures/Male/m1.jpeg",
		"pictures/Other/o1.jpeg",
		"pictures/invalid_picture.txt",
	} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("x"), 0o644))
	}
	return fixtures.New(fs, "pictures")
}

// fakePage emulates a form whose validation verdict is computed by a
// pluggable predicate over the currently entered values.
type fakePage struct {
	reg    *registry.Registry
	values map[model.FieldName]model.Value
	accept func(map[model.FieldName]model.Value) bool

	resets  int
	submits int
}

func newFakePage(accept func(map[model.FieldName]model.Value) bool) *fakePage {
	return &fakePage{
		reg:    registry.NewStudentForm(nil),
		values: map[model.FieldName]model.Value{},
		accept: accept,
	}
}

func (p *fakePage) Registry() *registry.Registry { return p.reg }

func (p *fakePage) Reset(context.Context) error {
	p.resets++
	p.values = map[model.FieldName]model.Value{}
	p.reg.UnfillAll()
	return nil
}

func (p *fakePage) Apply(_ context.Context, tc model.TestCase) error {
	for _, name := range model.AllFields {
		v, ok := tc[name]
		if !ok || v == nil {
			continue
		}
		fm, err := p.reg.Get(name)
		if err != nil {
			return err
		}
		if fm.State == model.FillFilled {
			continue
		}
		p.values[name] = v
		if err := p.reg.MarkFilled(name); err != nil {
			return err
		}
	}
	return nil
}

func (p *fakePage) Submit(context.Context) error {
	p.submits++
	return nil
}

func (p *fakePage) Verify(context.Context) bool { return p.accept(p.values) }

func (p *fakePage) CloseModal(context.Context) error { return nil }

func (p *fakePage) ClearField(ctx context.Context, name model.FieldName) (bool, error) {
	fm, err := p.reg.Get(name)
	if err != nil {
		return false, err
	}
	if !fm.Clearable {
		return false, p.Reset(ctx)
	}
	delete(p.values, name)
	return true, p.reg.MarkUnfilled(name)
}

func (p *fakePage) ExtractConfirmation(context.Context) (map[string]string, error) {
	rec := model.Record{
		FirstName:   p.str(model.FirstName),
		LastName:    p.str(model.LastName),
		Email:       p.str(model.Email),
		Gender:      p.str(model.Gender),
		Picture:     p.str(model.Picture),
		Mobile:      p.str(model.Mobile),
		Subjects:    p.strs(model.Subjects),
		Hobbies:     p.strs(model.Hobbies),
		Address:     p.str(model.Address),
		State:       p.str(model.State),
		City:        p.str(model.City),
	}
	if d, ok := p.values[model.DateOfBirth].(time.Time); ok {
		rec.DateOfBirth = d
	}
	return rec.ExpectedConfirmation(), nil
}

func (p *fakePage) str(name model.FieldName) string {
	s, _ := p.values[name].(string)
	return s
}

func (p *fakePage) strs(name model.FieldName) []string {
	s, _ := p.values[name].([]string)
	return s
}

// conforming mimics the form's documented validation rules exactly.
func conforming(h model.Hierarchy) func(map[model.FieldName]model.Value) bool {
	return func(v map[model.FieldName]model.Value) bool {
		for _, f := range []model.FieldName{model.FirstName, model.LastName, model.Address} {
			s, ok := v[f].(string)
			if !ok || !strategy.AcceptableText(s) {
				return false
			}
		}
		if s, ok := v[model.Email].(string); !ok || !strategy.AcceptableEmail(s) {
			return false
		}
		if s, ok := v[model.Mobile].(string); !ok || !strategy.AcceptableMobile(s) {
			return false
		}
		if _, ok := v[model.Gender].(string); !ok {
			return false
		}
		if s, ok := v[model.Picture].(string); !ok || !strings.HasSuffix(s, ".jpeg") {
			return false
		}
		if d, ok := v[model.DateOfBirth].(time.Time); !ok || !strategy.AcceptableBirthDate(d, fixedNow) {
			return false
		}
		if subs, ok := v[model.Subjects].([]string); !ok || len(subs) == 0 {
			return false
		}
		state, ok := v[model.State].(string)
		city, ok2 := v[model.City].(string)
		if !ok || !ok2 {
			return false
		}
		cities, known := h[state]
		return known && cities.Contains(city)
	}
}

func testRunner(t *testing.T, page Page, trials int) *Runner {
	t.Helper()
	lib := testLibrary(t)
	eng := strategy.NewEngine(testDomains(), lib, func() time.Time { return fixedNow })
	base, err := CanonicalRecord(testDomains(), lib, fixedNow)
	require.NoError(t, err)
	return NewRunner(page, eng, base, Options{Trials: trials, Seed: 42})
}

func TestRunHoldsAgainstConformingForm(t *testing.T) {
	page := newFakePage(conforming(testDomains().StateCityMap))
	r := testRunner(t, page, 20)

	results, err := r.Run(context.Background())
	require.NoError(t, err)

	// Ten valid and ten invalid generators, the round trip and two
	// concrete scenarios.
	require.Len(t, results, 23)
	for _, res := range results {
		assert.True(t, res.Passed(), "%s: %v", res.Name, res.Err)
	}
	assert.Greater(t, page.submits, 20*20)
}

func TestRunReportsViolationsOfPermissiveForm(t *testing.T) {
	page := newFakePage(func(map[model.FieldName]model.Value) bool { return true })
	r := testRunner(t, page, 5)

	results, err := r.Run(context.Background())
	require.NoError(t, err, "property violations must not abort the run")

	var failed int
	for _, res := range results {
		if res.Passed() {
			continue
		}
		failed++
		var f *Failure
		require.ErrorAs(t, res.Err, &f, "failed result must carry a counterexample")
	}
	assert.NotZero(t, failed)
}

func TestAcceptancePropertyShrinksRejectedInput(t *testing.T) {
	page := newFakePage(func(map[model.FieldName]model.Value) bool { return false })
	r := testRunner(t, page, 5)

	err := r.AcceptanceProperty(context.Background(), model.Email)
	require.Error(t, err)

	var f *Failure
	require.ErrorAs(t, err, &f)
	orig, ok := f.Value.(string)
	require.True(t, ok)
	shrunk, ok := f.Shrunk.(string)
	require.True(t, ok)
	assert.GreaterOrEqual(t, len(shrunk), 1)
	assert.LessOrEqual(t, len(shrunk), len(orig))
}

func TestRejectionPropertyRecordsEveryTrial(t *testing.T) {
	page := newFakePage(conforming(testDomains().StateCityMap))
	lib := testLibrary(t)
	eng := strategy.NewEngine(testDomains(), lib, func() time.Time { return fixedNow })
	base, err := CanonicalRecord(testDomains(), lib, fixedNow)
	require.NoError(t, err)

	rec := &countingRecorder{}
	r := NewRunner(page, eng, base, Options{Trials: 10, Seed: 7, Recorder: rec})

	require.NoError(t, r.RejectionProperty(context.Background(), model.Mobile))
	assert.Equal(t, 10, rec.count)
	assert.Equal(t, "invalid", rec.lastClass)
	assert.Equal(t, model.Mobile, rec.lastField)
	assert.Equal(t, r.RunID(), rec.lastRun)
}

type countingRecorder struct {
	count     int
	lastClass string
	lastField model.FieldName
	lastRun   model.RunID
}

func (c *countingRecorder) Record(runID model.RunID, field model.FieldName, class string, _ bool, _ model.TestCase) error {
	c.count++
	c.lastRun = runID
	c.lastField = field
	c.lastClass = class
	return nil
}

func TestRunnerResetsBetweenTrials(t *testing.T) {
	page := newFakePage(conforming(testDomains().StateCityMap))
	r := testRunner(t, page, 8)

	require.NoError(t, r.AcceptanceProperty(context.Background(), model.FirstName))
	assert.GreaterOrEqual(t, page.resets, 7)
}

func TestScenarioStateWithoutCityIsSubmittedAndRejected(t *testing.T) {
	page := newFakePage(conforming(testDomains().StateCityMap))
	r := testRunner(t, page, 5)

	require.NoError(t, r.ScenarioStateWithoutCity(context.Background()))
	assert.Equal(t, 1, page.submits, "the case must reach an actual submission")
	assert.Contains(t, page.values, model.State)
	assert.NotContains(t, page.values, model.City)
}

func TestScenarioStateWithoutCityFlagsPermissiveForm(t *testing.T) {
	page := newFakePage(func(map[model.FieldName]model.Value) bool { return true })
	r := testRunner(t, page, 5)

	err := r.ScenarioStateWithoutCity(context.Background())
	var f *Failure
	require.ErrorAs(t, err, &f)
}

func TestCanonicalRecordCapsSubjectsAtFive(t *testing.T) {
	ds := testDomains()
	ds.Subjects = model.Domain{"Arts", "Biology", "Chemistry", "Maths", "Physics", "Statistics"}

	rec, err := CanonicalRecord(ds, testLibrary(t), fixedNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Arts", "Biology", "Chemistry", "Maths", "Physics"}, rec.Subjects)
}

func TestCanonicalRecordNeedsDiscoveredDomains(t *testing.T) {
	_, err := CanonicalRecord(model.DomainSet{}, testLibrary(t), fixedNow)
	assert.Error(t, err)
}

func TestCanonicalRecordPassesConformingForm(t *testing.T) {
	lib := testLibrary(t)
	base, err := CanonicalRecord(testDomains(), lib, fixedNow)
	require.NoError(t, err)

	page := newFakePage(conforming(testDomains().StateCityMap))
	require.NoError(t, page.Apply(context.Background(), base.TestCase()))
	assert.True(t, page.Verify(context.Background()))
}
