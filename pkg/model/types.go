package model

import (
	"path/filepath"
	"sort"
	"strings"
	"time"
)

type RunID string
type FieldName string

const (
	FirstName   FieldName = "first_name"
	LastName    FieldName = "last_name"
	Email       FieldName = "email"
	Gender      FieldName = "gender"
	Picture     FieldName = "picture"
	Mobile      FieldName = "mobile"
	DateOfBirth FieldName = "date_of_birth"
	Subjects    FieldName = "subjects"
	Hobbies     FieldName = "hobbies"
	Address     FieldName = "address"
	State       FieldName = "state"
	City        FieldName = "city"
)

// AllFields lists every field in the order the form lays them out,
// which is also the order fills are applied in.
var AllFields = []FieldName{
	FirstName, LastName, Email, Gender, Mobile, DateOfBirth,
	Subjects, Hobbies, Picture, Address, State, City,
}

// Role selects the interaction protocol a field's control requires.
type Role string

const (
	RoleText        Role = "text"        // direct keystroke entry
	RoleRadio       Role = "radio"       // click-based single choice
	RoleCheckbox    Role = "checkbox"    // click-based multi choice
	RoleTypeAhead   Role = "typeahead"   // type-then-click single select
	RoleMultiSelect Role = "multiselect" // type-then-click, selections append
	RoleDate        Role = "date"        // composite calendar picker
	RoleFile        Role = "file"        // file upload input
)

// FillState tracks whether a field has been interacted with in the
// current form lifecycle.
type FillState int

const (
	FillEmpty FillState = iota
	FillFilled
)

// FieldModel describes one logical form field: its interaction role,
// whether its control can be cleared individually (controls that cannot
// force a full page reset), its fill state and, once discovery has run,
// its legal value domain.
type FieldModel struct {
	Name      FieldName `json:"name"`
	Role      Role      `json:"role"`
	Clearable bool      `json:"clearable"`
	State     FillState `json:"state"`
	Domain    Domain    `json:"domain,omitempty"`
}

// Domain is a discovered value set: deduplicated and sorted
// lexicographically so consumers get stable indices. An empty domain
// means "domain unknown", not an error.
type Domain []string

// Sort orders the domain lexicographically in place.
func (d Domain) Sort() { sort.Strings(d) }

// Contains reports whether v is part of the domain.
func (d Domain) Contains(v string) bool {
	for _, s := range d {
		if s == v {
			return true
		}
	}
	return false
}

// Hierarchy maps a parent value to the domain of its dependent control.
// Every present key has a non-empty child domain; invalid parents are
// excluded at discovery time.
type Hierarchy map[string]Domain

// Parents returns the parent values in lexicographic order.
func (h Hierarchy) Parents() Domain {
	out := make(Domain, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	out.Sort()
	return out
}

// DomainSet is the whole-file cache record of every discovered domain.
type DomainSet struct {
	Genders      Domain    `json:"genders"`
	Hobbies      Domain    `json:"hobbies"`
	Subjects     Domain    `json:"subjects"`
	StateCityMap Hierarchy `json:"state_city_map"`
}

// Value is a generated candidate for one field. Concrete types are
// string, []string, time.Time, GenderPicture and StateCity; a nil Value
// means "skip this field".
type Value any

// GenderPicture couples a sampled gender with a picture drawn from that
// gender's fixture set. The picture is never chosen independently of
// the gender.
type GenderPicture struct {
	Gender  string
	Picture string
}

// StateCity is a hierarchical selection. Empty strings mean absent, so
// {State: "Haryana", City: ""} encodes "state chosen with no city".
type StateCity struct {
	State string
	City  string
}

// TestCase maps field names to generated values for one trial. It is
// built per iteration, consumed once by the form controller and then
// discarded.
type TestCase map[FieldName]Value

// Clone returns a shallow copy, so overrides never mutate a base case.
func (tc TestCase) Clone() TestCase {
	out := make(TestCase, len(tc))
	for k, v := range tc {
		out[k] = v
	}
	return out
}

// SubmissionResult is the outcome of one submit attempt. Confirmation
// is only populated when Accepted is true, and is read-only to callers.
type SubmissionResult struct {
	Accepted     bool              `json:"accepted"`
	Confirmation map[string]string `json:"confirmation,omitempty"`
}

// Record is a fully populated form data set, used for the round-trip
// property and the concrete scenarios.
type Record struct {
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Gender      string    `json:"gender"`
	Picture     string    `json:"picture"`
	Mobile      string    `json:"mobile"`
	DateOfBirth time.Time `json:"date_of_birth"`
	Subjects    []string  `json:"subjects"`
	Hobbies     []string  `json:"hobbies"`
	Address     string    `json:"address"`
	State       string    `json:"state"`
	City        string    `json:"city"`
}

// confirmationDateLayout matches the form's "DD Month,YYYY" rendering.
const confirmationDateLayout = "02 January,2006"

// TestCase expands the record into per-field values.
func (r Record) TestCase() TestCase {
	return TestCase{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Gender:      r.Gender,
		Picture:     r.Picture,
		Mobile:      r.Mobile,
		DateOfBirth: r.DateOfBirth,
		Subjects:    r.Subjects,
		Hobbies:     r.Hobbies,
		Address:     r.Address,
		State:       r.State,
		City:        r.City,
	}
}

// ExpectedConfirmation returns the label-to-text mapping the result
// surface must show for this record, applying the form's documented
// formatting transforms (date as "DD Month,YYYY", lists joined with
// ", ", picture reduced to its base name).
func (r Record) ExpectedConfirmation() map[string]string {
	return map[string]string{
		"Student Name":   r.FirstName + " " + r.LastName,
		"Student Email":  r.Email,
		"Gender":         r.Gender,
		"Mobile":         r.Mobile,
		"Date of Birth":  r.DateOfBirth.Format(confirmationDateLayout),
		"Subjects":       strings.Join(r.Subjects, ", "),
		"Hobbies":        strings.Join(r.Hobbies, ", "),
		"Picture":        filepath.Base(r.Picture),
		"Address":        r.Address,
		"State and City": r.State + " " + r.City,
	}
}
