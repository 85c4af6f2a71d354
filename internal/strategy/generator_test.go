package strategy

import (
	"math/rand"
	"testing"
	"testing/quick"
	"unicode"
	"unicode/utf8"

	"formprobe/pkg/model"
)

// TestPropertyTextFromRespectsBounds verifies that generated strings
// always stay inside the requested rune-length window.
func TestPropertyTextFromRespectsBounds(t *testing.T) {
	f := func(seed int64, span uint8) bool {
		r := rand.New(rand.NewSource(seed))
		minLen := 1 + int(span%20)
		maxLen := minLen + int(span/4)
		s := textFrom(r, letterRanges, []rune("-' "), minLen, maxLen)
		n := utf8.RuneCountInString(s)
		return n >= minLen && n <= maxLen
	}
	cfg := &quick.Config{MaxCount: 500}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

// TestLetterlessRangesExcludeEveryLetterCodePoint walks the alphabet
// exhaustively: a single letter code point (the Latin-1 block hides
// ª, µ and º between its symbols) would let the invalid-text generator
// emit acceptable strings.
func TestLetterlessRangesExcludeEveryLetterCodePoint(t *testing.T) {
	for _, rr := range letterlessRanges {
		for c := rr.lo; c <= rr.hi; c++ {
			if unicode.IsLetter(c) {
				t.Errorf("letterless alphabet contains letter %q (U+%04X)", c, c)
			}
		}
	}
}

// TestPropertyLetterlessRangesHoldNoLetters verifies the alphabet used
// for zero-letter invalid text truly contains no letters.
func TestPropertyLetterlessRangesHoldNoLetters(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		for i := 0; i < 100; i++ {
			if unicode.IsLetter(pickRune(r, letterlessRanges)) {
				return false
			}
		}
		return true
	}
	cfg := &quick.Config{MaxCount: 200}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

// TestPropertyNonDigitRangesHoldNoDigits guards the invalid-mobile
// alphabet: any digit would make a generated value accidentally valid.
func TestPropertyNonDigitRangesHoldNoDigits(t *testing.T) {
	f := func(seed int64) bool {
		r := rand.New(rand.NewSource(seed))
		for i := 0; i < 100; i++ {
			if unicode.IsDigit(pickRune(r, nonDigitRanges)) {
				return false
			}
		}
		return true
	}
	cfg := &quick.Config{MaxCount: 200}
	if err := quick.Check(f, cfg); err != nil {
		t.Error(err)
	}
}

func TestSubsetOfUniqueness(t *testing.T) {
	d := model.Domain{"a", "b", "c", "d", "e"}
	g := SubsetOf(d, 2)
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		v := g(r).([]string)
		if len(v) < 2 || len(v) > len(d) {
			t.Fatalf("subset size %d out of range", len(v))
		}
		seen := map[string]bool{}
		for _, s := range v {
			if seen[s] {
				t.Fatalf("duplicate %q in subset %v", s, v)
			}
			seen[s] = true
		}
	}
}

func TestSampleFromEmptyDomainYieldsAbsence(t *testing.T) {
	g := SampleFrom(nil)
	if v := g(rand.New(rand.NewSource(1))); v != nil {
		t.Errorf("SampleFrom(nil) = %v, want absence", v)
	}
}

func TestOneOfCoversAllBranches(t *testing.T) {
	g := OneOf(Just("a"), Just("b"), Nil())
	r := rand.New(rand.NewSource(12))
	seen := map[model.Value]bool{}
	for i := 0; i < 200; i++ {
		seen[g(r)] = true
	}
	if !seen["a"] || !seen["b"] || !seen[nil] {
		t.Errorf("OneOf missed a branch: %v", seen)
	}
}
