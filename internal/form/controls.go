package form

import (
	"context"
	"fmt"

	"formprobe/internal/scanner"
	"formprobe/pkg/model"
)

// typeAheadControl adapts one reactive dropdown to the scanner's
// control protocol. Selecting types the full option text first so the
// panel is filtered down before the click resolves.
type typeAheadControl struct {
	drv     Driver
	input   string
	wrapper string
}

func (c *Controller) typeAhead(input, wrapper string) *typeAheadControl {
	return &typeAheadControl{drv: c.drv, input: input, wrapper: wrapper}
}

func (t *typeAheadControl) Type(ctx context.Context, text string) error {
	return t.drv.Type(ctx, t.input, text)
}

func (t *typeAheadControl) Clear(ctx context.Context) error {
	return t.drv.Clear(ctx, t.input)
}

func (t *typeAheadControl) Options(ctx context.Context) ([]string, error) {
	return t.drv.TextAllXPath(ctx, xpOptions(t.wrapper))
}

func (t *typeAheadControl) Select(ctx context.Context, option string) error {
	if err := t.drv.Type(ctx, t.input, option); err != nil {
		return err
	}
	return t.drv.ClickXPath(ctx, xpOption(t.wrapper, option))
}

// ScrapeGenders reads the radio group's labels straight off the page;
// unlike the dropdowns, the group renders its full domain statically.
func (c *Controller) ScrapeGenders(ctx context.Context) (model.Domain, error) {
	return c.scrapeLabels(ctx, selGenderLabels)
}

// ScrapeHobbies reads the checkbox group's labels.
func (c *Controller) ScrapeHobbies(ctx context.Context) (model.Domain, error) {
	return c.scrapeLabels(ctx, selHobbyLabels)
}

func (c *Controller) scrapeLabels(ctx context.Context, selector string) (model.Domain, error) {
	texts, err := c.drv.TextAll(ctx, selector)
	if err != nil {
		return nil, err
	}
	out := make(model.Domain, 0, len(texts))
	for _, t := range texts {
		if t != "" {
			out = append(out, t)
		}
	}
	out.Sort()
	return out, nil
}

// DiscoverDomains enumerates every discoverable domain on a freshly
// loaded form: the statically rendered choice groups by scraping, the
// subjects dropdown by a single alphabet sweep and the state/city pair
// by the hierarchical sweep. Discovered domains are attached to the
// registry as they land.
func (c *Controller) DiscoverDomains(ctx context.Context, sc *scanner.Scanner) (model.DomainSet, error) {
	var ds model.DomainSet
	var err error

	if ds.Genders, err = c.ScrapeGenders(ctx); err != nil {
		return ds, fmt.Errorf("genders: %w", err)
	}
	if ds.Hobbies, err = c.ScrapeHobbies(ctx); err != nil {
		return ds, fmt.Errorf("hobbies: %w", err)
	}
	if ds.Subjects, err = sc.Discover(ctx, c.typeAhead(selSubjects, wrapSubjects)); err != nil {
		return ds, fmt.Errorf("subjects: %w", err)
	}
	state := c.typeAhead(selState, wrapState)
	city := c.typeAhead(selCity, wrapCity)
	if ds.StateCityMap, err = sc.DiscoverHierarchy(ctx, state, city); err != nil {
		return ds, fmt.Errorf("states and cities: %w", err)
	}

	c.attachDomains(ds)
	c.log.Info("domains discovered",
		"genders", len(ds.Genders),
		"hobbies", len(ds.Hobbies),
		"subjects", len(ds.Subjects),
		"states", len(ds.StateCityMap))
	return ds, nil
}

// attachDomains publishes a domain set to the field registry, whether
// it came from a live scan or the cache.
func (c *Controller) attachDomains(ds model.DomainSet) {
	_ = c.reg.SetDomain(model.Gender, ds.Genders)
	_ = c.reg.SetDomain(model.Hobbies, ds.Hobbies)
	_ = c.reg.SetDomain(model.Subjects, ds.Subjects)
	_ = c.reg.SetDomain(model.State, ds.StateCityMap.Parents())

	cities := make(map[string]struct{})
	for _, cs := range ds.StateCityMap {
		for _, ct := range cs {
			cities[ct] = struct{}{}
		}
	}
	all := make(model.Domain, 0, len(cities))
	for ct := range cities {
		all = append(all, ct)
	}
	all.Sort()
	_ = c.reg.SetDomain(model.City, all)
}

// AttachDomains publishes cached domains without a scan.
func (c *Controller) AttachDomains(ds model.DomainSet) { c.attachDomains(ds) }
