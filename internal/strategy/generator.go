// Package strategy derives, for every form field, a pair of lazy
// generators: one producing inputs the form must accept and one
// producing inputs it must reject. Generators are restartable closures
// over a PRNG; test drivers draw finite samples from them.
package strategy

import (
	"math/rand"
	"strings"

	"formprobe/pkg/model"
)

// Generator emits one candidate value per call. A nil returned Value
// means "absence of value" and is a legal emission for invalid
// generators.
type Generator func(r *rand.Rand) model.Value

// Sample draws n values.
func (g Generator) Sample(r *rand.Rand, n int) []model.Value {
	out := make([]model.Value, n)
	for i := range out {
		out[i] = g(r)
	}
	return out
}

// Just always emits v.
func Just(v model.Value) Generator {
	return func(*rand.Rand) model.Value { return v }
}

// Nil always emits absence.
func Nil() Generator {
	return func(*rand.Rand) model.Value { return nil }
}

// OneOf picks one of the given generators uniformly per draw.
func OneOf(gs ...Generator) Generator {
	return func(r *rand.Rand) model.Value {
		return gs[r.Intn(len(gs))](r)
	}
}

// SampleFrom draws a single element of the domain. An empty domain
// yields absence, matching "domain unknown".
func SampleFrom(d model.Domain) Generator {
	return func(r *rand.Rand) model.Value {
		if len(d) == 0 {
			return nil
		}
		return d[r.Intn(len(d))]
	}
}

// SubsetOf draws a unique-valued subset of the domain with at least
// minSize elements, in random order.
func SubsetOf(d model.Domain, minSize int) Generator {
	return func(r *rand.Rand) model.Value {
		if len(d) < minSize {
			return nil
		}
		idx := r.Perm(len(d))
		n := minSize + r.Intn(len(d)-minSize+1)
		out := make([]string, n)
		for i := 0; i < n; i++ {
			out[i] = d[idx[i]]
		}
		return out
	}
}

// runeRange is an inclusive span of code points.
type runeRange struct{ lo, hi rune }

// Letter blocks across the Basic Multilingual Plane. Names and
// addresses are multilingual; restricting generation to ASCII would
// miss the character-class boundary under test.
var letterRanges = []runeRange{
	{'a', 'z'},
	{'A', 'Z'},
	{0x00C0, 0x00D6}, // Latin-1 letters
	{0x00D8, 0x00F6},
	{0x00F8, 0x00FF},
	{0x0391, 0x03A9}, // Greek
	{0x03B1, 0x03C9},
	{0x0410, 0x044F}, // Cyrillic
	{0x05D0, 0x05EA}, // Hebrew
	{0x4E00, 0x4FFF}, // CJK slice
}

var digitRanges = []runeRange{{'0', '9'}}

// Symbols, punctuation and digits only: no letters anywhere, so
// strings built purely from these probe the "zero alphabetic
// characters" boundary.
var letterlessRanges = []runeRange{
	{'!', '/'},
	{':', '@'},
	{'[', '`'},
	{'{', '~'},
	{'0', '9'},
	// Latin-1 punctuation and symbols, skipping the letters ª µ º
	// embedded in the block.
	{0x00A1, 0x00A9},
	{0x00AB, 0x00B4},
	{0x00B6, 0x00B9},
	{0x00BB, 0x00BF},
}

func pickRune(r *rand.Rand, ranges []runeRange) rune {
	rr := ranges[r.Intn(len(ranges))]
	return rr.lo + rune(r.Intn(int(rr.hi-rr.lo)+1))
}

// textFrom builds a string of minLen..maxLen runes drawn from ranges
// plus the extra runes.
func textFrom(r *rand.Rand, ranges []runeRange, extra []rune, minLen, maxLen int) string {
	n := minLen + r.Intn(maxLen-minLen+1)
	var b strings.Builder
	for i := 0; i < n; i++ {
		if len(extra) > 0 && r.Intn(8) == 0 {
			b.WriteRune(extra[r.Intn(len(extra))])
			continue
		}
		b.WriteRune(pickRune(r, ranges))
	}
	return b.String()
}

func digits(r *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteRune(pickRune(r, digitRanges))
	}
	return b.String()
}
