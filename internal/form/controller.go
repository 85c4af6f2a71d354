// Package form drives the student registration form through its
// lifecycle: load, fill, submit, verify, extract, reset. It owns the
// page's selector knowledge and the role-specific interaction
// protocols; callers deal only in field names and values.
package form

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"formprobe/internal/logger"
	"formprobe/internal/registry"
	"formprobe/pkg/model"
)

// Driver is the browser capability set the controller consumes.
// *browser.Session satisfies it; tests substitute a scripted fake.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	Refresh(ctx context.Context) error
	Click(ctx context.Context, selector string) error
	ClickXPath(ctx context.Context, xpath string) error
	Type(ctx context.Context, selector, text string) error
	Clear(ctx context.Context, selector string) error
	TextAll(ctx context.Context, selector string) ([]string, error)
	TextAllXPath(ctx context.Context, xpath string) ([]string, error)
	HTML(ctx context.Context, selector string) (string, error)
	SetSelect(ctx context.Context, selector, value string) error
	SetFiles(ctx context.Context, selector string, files ...string) error
	WaitExists(ctx context.Context, selector string, timeout time.Duration) bool
	WaitExistsXPath(ctx context.Context, xpath string, timeout time.Duration) bool
}

// Phase is the controller's position in the form lifecycle.
type Phase int

const (
	PhaseUnloaded Phase = iota
	PhaseLoaded
	PhaseFilled
	PhaseSubmitted
)

func (p Phase) String() string {
	switch p {
	case PhaseLoaded:
		return "loaded"
	case PhaseFilled:
		return "filled"
	case PhaseSubmitted:
		return "submitted"
	default:
		return "unloaded"
	}
}

// ErrValueType reports a fill value whose concrete type does not match
// the field's role.
var ErrValueType = errors.New("value type does not match field role")

// Options bounds the controller's waits.
type Options struct {
	URL            string
	WaitTimeout    time.Duration
	ConsentTimeout time.Duration
}

// Controller drives one live form page. It is not safe for concurrent
// use; the whole run shares one page and one controller.
type Controller struct {
	drv   Driver
	reg   *registry.Registry
	log   logger.Logger
	opts  Options
	phase Phase
}

func NewController(drv Driver, reg *registry.Registry, opts Options, log logger.Logger) *Controller {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.WaitTimeout == 0 {
		opts.WaitTimeout = 3 * time.Second
	}
	if opts.ConsentTimeout == 0 {
		opts.ConsentTimeout = time.Second
	}
	return &Controller{drv: drv, reg: reg, log: log, opts: opts}
}

// Phase returns the current lifecycle phase.
func (c *Controller) Phase() Phase { return c.phase }

// Registry exposes the field models the controller maintains.
func (c *Controller) Registry() *registry.Registry { return c.reg }

// Load navigates to the form and dismisses the consent overlay if one
// shows up within the consent window. A missing overlay is the normal
// case, not an error.
func (c *Controller) Load(ctx context.Context) error {
	if err := c.drv.Navigate(ctx, c.opts.URL); err != nil {
		return err
	}
	c.dismissConsent(ctx)
	c.reg.UnfillAll()
	c.phase = PhaseLoaded
	c.log.Info("form loaded", "url", c.opts.URL)
	return nil
}

func (c *Controller) dismissConsent(ctx context.Context) {
	if !c.drv.WaitExists(ctx, selConsent, c.opts.ConsentTimeout) {
		return
	}
	if err := c.drv.Click(ctx, selConsent); err != nil {
		c.log.Warn("consent dismissal failed", "error", err)
		return
	}
	c.log.Debug("consent overlay dismissed")
}

// Fill enters v into the named field using the protocol its role
// demands. A nil value is an explicit skip. Filling an already-filled
// field is a no-op: re-entry protocols differ per control and a double
// fill would corrupt click-toggled state.
func (c *Controller) Fill(ctx context.Context, name model.FieldName, v model.Value) error {
	if v == nil {
		return nil
	}
	fm, err := c.reg.Get(name)
	if err != nil {
		return err
	}
	if fm.State == model.FillFilled {
		c.log.Debug("fill skipped, already filled", "field", string(name))
		return nil
	}

	switch fm.Role {
	case model.RoleText:
		err = c.fillText(ctx, name, v)
	case model.RoleFile:
		err = c.fillFile(ctx, v)
	case model.RoleRadio:
		err = c.fillGender(ctx, v)
	case model.RoleCheckbox:
		err = c.fillHobbies(ctx, v)
	case model.RoleMultiSelect:
		err = c.fillSubjects(ctx, v)
	case model.RoleTypeAhead:
		err = c.fillTypeAhead(ctx, name, v)
	case model.RoleDate:
		err = c.fillDate(ctx, v)
	default:
		err = fmt.Errorf("field %q has unknown role %q", name, fm.Role)
	}
	if err != nil {
		return fmt.Errorf("fill %s: %w", name, err)
	}
	if err := c.reg.MarkFilled(name); err != nil {
		return err
	}
	c.phase = PhaseFilled
	return nil
}

// Apply fills every value of the test case in form layout order, which
// keeps the state type-ahead committed before the city control is
// touched.
func (c *Controller) Apply(ctx context.Context, tc model.TestCase) error {
	for _, name := range model.AllFields {
		v, ok := tc[name]
		if !ok {
			continue
		}
		if err := c.Fill(ctx, name, v); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) fillText(ctx context.Context, name model.FieldName, v model.Value) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrValueType, v)
	}
	return c.drv.Type(ctx, fieldSelector[name], s)
}

func (c *Controller) fillFile(ctx context.Context, v model.Value) error {
	path, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrValueType, v)
	}
	return c.drv.SetFiles(ctx, selPicture, path)
}

func (c *Controller) fillGender(ctx context.Context, v model.Value) error {
	g, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrValueType, v)
	}
	return c.drv.ClickXPath(ctx, xpGender(g))
}

func (c *Controller) fillHobbies(ctx context.Context, v model.Value) error {
	hs, ok := v.([]string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrValueType, v)
	}
	for _, h := range hs {
		if err := c.drv.ClickXPath(ctx, xpHobby(h)); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) fillSubjects(ctx context.Context, v model.Value) error {
	subs, ok := v.([]string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrValueType, v)
	}
	ctl := c.typeAhead(selSubjects, wrapSubjects)
	for _, s := range subs {
		if err := ctl.Select(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) fillTypeAhead(ctx context.Context, name model.FieldName, v model.Value) error {
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: %T", ErrValueType, v)
	}
	switch name {
	case model.State:
		return c.typeAhead(selState, wrapState).Select(ctx, s)
	case model.City:
		return c.typeAhead(selCity, wrapCity).Select(ctx, s)
	}
	return fmt.Errorf("no type-ahead control for field %q", name)
}

// fillDate opens the composite picker, commits year and month through
// their native selects and clicks the day cell of the shown month.
func (c *Controller) fillDate(ctx context.Context, v model.Value) error {
	d, ok := v.(time.Time)
	if !ok {
		return fmt.Errorf("%w: %T", ErrValueType, v)
	}
	if err := c.drv.Click(ctx, selDOBInput); err != nil {
		return err
	}
	if !c.drv.WaitExists(ctx, selYearSelect, c.opts.WaitTimeout) {
		return errors.New("date picker did not open")
	}
	if err := c.drv.SetSelect(ctx, selYearSelect, strconv.Itoa(d.Year())); err != nil {
		return err
	}
	if err := c.drv.SetSelect(ctx, selMonthSelect, strconv.Itoa(int(d.Month())-1)); err != nil {
		return err
	}
	return c.drv.ClickXPath(ctx, xpDayCell(d.Day()))
}

// Submit clicks the submit control unconditionally; whether the form
// accepted the state is Verify's question.
func (c *Controller) Submit(ctx context.Context) error {
	if err := c.drv.Click(ctx, selSubmit); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	c.phase = PhaseSubmitted
	return nil
}

// Verify reports whether the submission was accepted: the success modal
// appearing within the wait window means yes, a quiet timeout means the
// form rejected the data. Rejection is an answer, not an error.
func (c *Controller) Verify(ctx context.Context) bool {
	ok := c.drv.WaitExistsXPath(ctx, xpModalTitle, c.opts.WaitTimeout)
	c.log.Debug("submission verified", "accepted", ok)
	return ok
}

// CloseModal dismisses the confirmation modal after a verified accept.
func (c *Controller) CloseModal(ctx context.Context) error {
	if err := c.drv.Click(ctx, selModalClose); err != nil {
		return fmt.Errorf("close modal: %w", err)
	}
	return nil
}

// ExtractConfirmation reads the confirmation table off the open modal
// into a label-to-value map.
func (c *Controller) ExtractConfirmation(ctx context.Context) (map[string]string, error) {
	html, err := c.drv.HTML(ctx, selModalTable)
	if err != nil {
		return nil, fmt.Errorf("read confirmation table: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse confirmation table: %w", err)
	}
	out := make(map[string]string)
	doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.Eq(0).Text())
		out[label] = strings.TrimSpace(cells.Eq(1).Text())
	})
	if len(out) == 0 {
		return nil, errors.New("confirmation table holds no rows")
	}
	return out, nil
}

// Reset reloads the page, returning every control to its pristine
// state, and drops all filled flags.
func (c *Controller) Reset(ctx context.Context) error {
	if err := c.drv.Refresh(ctx); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	c.dismissConsent(ctx)
	c.reg.UnfillAll()
	c.phase = PhaseLoaded
	c.log.Debug("form reset")
	return nil
}

// ClearField empties a single field when its control supports it and
// falls back to a full reset when it does not. It reports whether the
// cheap path was taken so callers can tell how much state survived.
func (c *Controller) ClearField(ctx context.Context, name model.FieldName) (cleared bool, err error) {
	fm, err := c.reg.Get(name)
	if err != nil {
		return false, err
	}
	if !fm.Clearable {
		return false, c.Reset(ctx)
	}
	if err := c.drv.Clear(ctx, fieldSelector[name]); err != nil {
		return false, fmt.Errorf("clear %s: %w", name, err)
	}
	if err := c.reg.MarkUnfilled(name); err != nil {
		return false, err
	}
	return true, nil
}
