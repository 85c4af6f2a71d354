package strategy

import (
	"math/rand"
	"strings"
	"time"

	"formprobe/internal/fixtures"
	"formprobe/pkg/model"
)

// Composite pseudo-fields: their values span two co-dependent controls
// and are split by the suite when the form is filled.
const (
	GenderAndPicture model.FieldName = "gender_and_picture"
	StateAndCity     model.FieldName = "state_and_city"
)

// Pair holds a field's two generators. Either side may be nil when the
// field has no cases of that class (hobbies cannot be invalid, a lone
// gender cannot be valid without its picture). The two sides are
// disjoint: no value is ever claimed by both.
type Pair struct {
	Valid   Generator
	Invalid Generator
}

// Engine owns the per-field strategy pairs, parameterized by the
// discovered domains and the picture fixtures.
type Engine struct {
	pairs map[model.FieldName]Pair
	now   func() time.Time
}

// NewEngine derives every field's pair. now is the clock used for
// date-of-birth boundaries; nil means time.Now.
func NewEngine(ds model.DomainSet, lib *fixtures.Library, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}

	text := Pair{Valid: validText(), Invalid: invalidText()}

	invalidPicture := Nil()
	if lib != nil {
		invalidPicture = OneOf(Nil(), Just(lib.InvalidSample()))
	}

	pairs := map[model.FieldName]Pair{
		model.FirstName:   text,
		model.LastName:    text,
		model.Address:     text,
		model.Email:       {Valid: validEmail(), Invalid: invalidEmail()},
		model.Mobile:      {Valid: validMobile(), Invalid: invalidMobile()},
		model.DateOfBirth: {Valid: validBirthDate(now), Invalid: invalidBirthDate(now)},
		model.Subjects:    {Valid: SubsetOf(ds.Subjects, 1), Invalid: Nil()},
		model.Hobbies:     {Valid: SubsetOf(ds.Hobbies, 0)},
		model.Gender:      {Invalid: Nil()},
		model.Picture:     {Invalid: invalidPicture},
		GenderAndPicture:  {Valid: validGenderPicture(ds.Genders, lib)},
		StateAndCity: {
			Valid:   validStateCity(ds.StateCityMap),
			Invalid: invalidStateCity(ds.StateCityMap),
		},
	}
	return &Engine{pairs: pairs, now: now}
}

// Pair returns the strategies for a field.
func (e *Engine) Pair(f model.FieldName) (Pair, bool) {
	p, ok := e.pairs[f]
	return p, ok
}

// Now returns the engine's clock.
func (e *Engine) Now() time.Time { return e.now() }

const emailAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789_-."

func fromAlphabet(r *rand.Rand, alphabet string, minLen, maxLen int) string {
	n := minLen + r.Intn(maxLen-minLen+1)
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}

// validText emits 1..299-rune multilingual strings holding at least
// one letter, whitespace-trimmed.
func validText() Generator {
	ranges := append(append([]runeRange{}, letterRanges...), digitRanges...)
	return func(r *rand.Rand) model.Value {
		s := strings.TrimSpace(textFrom(r, ranges, []rune("-' "), 1, 298))
		if !AcceptableText(s) {
			s += string(pickRune(r, letterRanges))
		}
		return s
	}
}

// invalidText emits absence, letterless strings, or strings probing
// the 300-rune boundary from above.
func invalidText() Generator {
	long := append(append([]runeRange{}, letterRanges...), letterlessRanges...)
	return OneOf(
		Nil(),
		func(r *rand.Rand) model.Value {
			return strings.TrimSpace(textFrom(r, letterlessRanges, []rune("-' "), 1, 40))
		},
		func(r *rand.Rand) model.Value {
			return textFrom(r, long, nil, maxTextRunes, maxTextRunes+60)
		},
	)
}

func validEmail() Generator {
	return func(r *rand.Rand) model.Value {
		local := fromAlphabet(r, emailAlphabet, 1, 12)
		domain := fromAlphabet(r, emailAlphabet, 1, 10)
		tld := fromAlphabet(r, "abcdefghijklmnopqrstuvwxyz", 2, 5)
		return local + "@" + domain + "." + tld
	}
}

// invalidEmail covers the rejection shapes outside the acceptance
// pattern: absence, missing @, unescaped special prefix, missing
// domain, invalid domain characters and out-of-bounds TLD lengths.
func invalidEmail() Generator {
	letters := "abcdefghijklmnopqrstuvwxyz0123456789"
	return OneOf(
		Nil(),
		func(r *rand.Rand) model.Value { // missing '@'
			return fromAlphabet(r, letters, 1, 20) + ".com"
		},
		func(r *rand.Rand) model.Value { // special characters, no escape
			return fromAlphabet(r, "!#$%^&*()", 1, 10) + "@example.com"
		},
		func(r *rand.Rand) model.Value { // missing domain part
			return fromAlphabet(r, letters, 1, 12) + "@"
		},
		func(r *rand.Rand) model.Value { // invalid domain characters
			return fromAlphabet(r, emailAlphabet, 1, 10) + "@!#$.com"
		},
		func(r *rand.Rand) model.Value { // single-letter TLD
			return fromAlphabet(r, letters, 1, 12) + "@example.a"
		},
		func(r *rand.Rand) model.Value { // TLD past five letters
			return fromAlphabet(r, letters, 1, 12) + "@example." + fromAlphabet(r, "abcdefghijklmnopqrstuvwxyz", 6, 12)
		},
	)
}

func validMobile() Generator {
	return func(r *rand.Rand) model.Value { return digits(r, 10) }
}

// nonDigitRanges holds letters and punctuation but no decimal digits.
var nonDigitRanges = append([]runeRange{
	{'!', '/'},
	{':', '@'},
	{'[', '`'},
	{'{', '~'},
}, letterRanges...)

func invalidMobile() Generator {
	return OneOf(
		Nil(),
		func(r *rand.Rand) model.Value { return digits(r, 1+r.Intn(9)) },
		func(r *rand.Rand) model.Value { return textFrom(r, nonDigitRanges, nil, 1, 10) },
	)
}

// truncate drops the time-of-day component.
func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// validBirthDate emits dates 16 to 60 years before now, using 365.25
// days per year to approximate leap years.
func validBirthDate(now func() time.Time) Generator {
	return func(r *rand.Rand) model.Value {
		minDays := int(minStudentAgeYears * yearDays)
		maxDays := int(maxStudentAgeYears * yearDays)
		back := minDays + r.Intn(maxDays-minDays+1)
		return truncate(now().AddDate(0, 0, -back))
	}
}

// invalidBirthDate emits today or any future date: students cannot be
// newborns or born in the future.
func invalidBirthDate(now func() time.Time) Generator {
	return func(r *rand.Rand) model.Value {
		ahead := r.Intn(int(120 * yearDays))
		return truncate(now().AddDate(0, 0, ahead))
	}
}

func validGenderPicture(genders model.Domain, lib *fixtures.Library) Generator {
	pickGender := SampleFrom(genders)
	return func(r *rand.Rand) model.Value {
		if lib == nil {
			return nil
		}
		g, ok := pickGender(r).(string)
		if !ok {
			return nil
		}
		p, err := lib.Pick(r, g)
		if err != nil {
			return nil
		}
		return model.GenderPicture{Gender: g, Picture: p}
	}
}

func validStateCity(h model.Hierarchy) Generator {
	pickState := SampleFrom(h.Parents())
	return func(r *rand.Rand) model.Value {
		state, ok := pickState(r).(string)
		if !ok {
			return nil
		}
		cities := h[state]
		return model.StateCity{State: state, City: cities[r.Intn(len(cities))]}
	}
}

// invalidStateCity never emits a city: a city without a valid state
// context is always invalid, and a state alone is incomplete.
func invalidStateCity(h model.Hierarchy) Generator {
	parents := h.Parents()
	return func(r *rand.Rand) model.Value {
		sc := model.StateCity{}
		if len(parents) > 0 && r.Intn(2) == 0 {
			sc.State = parents[r.Intn(len(parents))]
		}
		return sc
	}
}
