// Package scanner discovers the complete value domain behind opaque
// type-ahead dropdown controls. Such controls filter their option list
// reactively as characters are typed and expose no bulk listing, so the
// only complete enumeration strategy is probing with every letter of a
// fixed alphabet and accumulating whatever becomes visible.
package scanner

import (
	"context"
	"fmt"

	"formprobe/internal/logger"
	"formprobe/pkg/model"
)

// DefaultAlphabet is sufficient because option matching is
// case-insensitive and every in-scope value contains at least one
// Latin letter.
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyz"

// Control is a single type-ahead input bound to a reactive option
// panel.
type Control interface {
	// Type enters text into the control.
	Type(ctx context.Context, text string) error
	// Clear empties the control. Clearing must succeed between probes
	// to keep per-letter results isolated.
	Clear(ctx context.Context) error
	// Options returns the currently visible option texts, empty when
	// no panel is showing.
	Options(ctx context.Context) ([]string, error)
	// Select commits an option, typing it and clicking the match.
	Select(ctx context.Context, option string) error
}

// Scanner runs alphabet sweeps over type-ahead controls.
type Scanner struct {
	alphabet string
	log      logger.Logger
}

func New(alphabet string, log logger.Logger) *Scanner {
	if alphabet == "" {
		alphabet = DefaultAlphabet
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Scanner{alphabet: alphabet, log: log}
}

// Discover probes the control with every alphabet letter and returns
// the accumulated option set, deduplicated and sorted
// lexicographically. An empty result means the domain is unknown, not
// that discovery failed. Probing is best-effort per letter: a missing
// option panel is not retried, the rest of the sweep compensates. An
// inability to clear the control aborts the scan, since stale text
// would poison every following probe.
func (s *Scanner) Discover(ctx context.Context, c Control) (model.Domain, error) {
	seen := make(map[string]struct{})
	for _, r := range s.alphabet {
		letter := string(r)
		if err := c.Type(ctx, letter); err != nil {
			s.log.Warn("probe failed", "letter", letter, "error", err)
		} else {
			opts, err := c.Options(ctx)
			if err != nil {
				s.log.Warn("option read failed", "letter", letter, "error", err)
			}
			for _, o := range opts {
				if o != "" {
					seen[o] = struct{}{}
				}
			}
		}
		if err := c.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear control after %q: %w", letter, err)
		}
	}

	out := make(model.Domain, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	out.Sort()
	s.log.Debug("domain discovered", "size", len(out))
	return out, nil
}

// DiscoverHierarchy enumerates a two-level parent/child domain. The
// parent control is swept once; then for every parent value the parent
// is committed, the child control is swept, and the parent is cleared
// before the next value. Parents whose child domain comes back empty
// are treated as invalid and excluded. This costs one full sweep per
// parent value, the dominant cost of discovery, and is the required
// strategy rather than a shortcut.
func (s *Scanner) DiscoverHierarchy(ctx context.Context, parent, child Control) (model.Hierarchy, error) {
	parents, err := s.Discover(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("parent domain: %w", err)
	}

	h := make(model.Hierarchy, len(parents))
	for _, p := range parents {
		if err := parent.Select(ctx, p); err != nil {
			s.log.Warn("parent select failed, excluding", "parent", p, "error", err)
			// Select types the option before clicking it, so a failed
			// select can leave residual text that would corrupt every
			// following probe.
			if cerr := parent.Clear(ctx); cerr != nil {
				return nil, fmt.Errorf("clear parent after failed select of %q: %w", p, cerr)
			}
			continue
		}
		children, err := s.Discover(ctx, child)
		if err != nil {
			return nil, fmt.Errorf("child domain of %q: %w", p, err)
		}
		if len(children) == 0 {
			s.log.Warn("parent has empty child domain, excluding", "parent", p)
		} else {
			h[p] = children
		}
		if err := parent.Clear(ctx); err != nil {
			return nil, fmt.Errorf("clear parent after %q: %w", p, err)
		}
	}
	return h, nil
}
