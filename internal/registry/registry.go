// Package registry stores the per-field models of one form: control
// role, clearability, discovered domain and the filled flag that
// guards against duplicate interaction within a form lifecycle.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"formprobe/internal/logger"
	"formprobe/pkg/model"
)

// ErrNotFound reports a lookup of an unregistered field.
var ErrNotFound = errors.New("field not registered")

// Registry is a thread-safe field model store. It only stores state;
// idempotency decisions belong to the caller holding the flag.
type Registry struct {
	mu     sync.RWMutex
	fields map[model.FieldName]*model.FieldModel
	log    logger.Logger
}

func New(log logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{
		fields: make(map[model.FieldName]*model.FieldModel),
		log:    log,
	}
}

// NewStudentForm returns a registry preloaded with the student
// registration form's fields. Clearability is classified up front:
// plain text entries and the file input can be cleared individually,
// while committed selections (radio, checkbox, dropdowns) and the
// composite date picker only come back via a full page reset.
func NewStudentForm(log logger.Logger) *Registry {
	r := New(log)
	for _, fm := range []model.FieldModel{
		{Name: model.FirstName, Role: model.RoleText, Clearable: true},
		{Name: model.LastName, Role: model.RoleText, Clearable: true},
		{Name: model.Email, Role: model.RoleText, Clearable: true},
		{Name: model.Gender, Role: model.RoleRadio},
		{Name: model.Mobile, Role: model.RoleText, Clearable: true},
		{Name: model.DateOfBirth, Role: model.RoleDate},
		{Name: model.Subjects, Role: model.RoleMultiSelect},
		{Name: model.Hobbies, Role: model.RoleCheckbox},
		{Name: model.Picture, Role: model.RoleFile, Clearable: true},
		{Name: model.Address, Role: model.RoleText, Clearable: true},
		{Name: model.State, Role: model.RoleTypeAhead},
		{Name: model.City, Role: model.RoleTypeAhead},
	} {
		r.Register(fm)
	}
	return r
}

// Register adds or replaces a field model.
func (r *Registry) Register(fm model.FieldModel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := fm
	r.fields[fm.Name] = &m
}

// Get returns a copy of the field's model.
func (r *Registry) Get(name model.FieldName) (model.FieldModel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fm, ok := r.fields[name]
	if !ok {
		return model.FieldModel{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return *fm, nil
}

// SetDomain attaches a discovered domain to the field.
func (r *Registry) SetDomain(name model.FieldName, d model.Domain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fm, ok := r.fields[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	fm.Domain = d
	r.log.Debug("domain attached", "field", string(name), "size", len(d))
	return nil
}

// MarkFilled records a successful fill of the field.
func (r *Registry) MarkFilled(name model.FieldName) error {
	return r.setState(name, model.FillFilled)
}

// MarkUnfilled resets the field's flag after a clear.
func (r *Registry) MarkUnfilled(name model.FieldName) error {
	return r.setState(name, model.FillEmpty)
}

func (r *Registry) setState(name model.FieldName, st model.FillState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fm, ok := r.fields[name]
	if !ok {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	fm.State = st
	return nil
}

// IsFilled reports whether the field was filled in this lifecycle.
func (r *Registry) IsFilled(name model.FieldName) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fm, ok := r.fields[name]
	if !ok {
		return false, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return fm.State == model.FillFilled, nil
}

// AnyFilled reports whether any field carries state from a previous
// iteration.
func (r *Registry) AnyFilled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, fm := range r.fields {
		if fm.State == model.FillFilled {
			return true
		}
	}
	return false
}

// UnfillAll resets every filled flag, used on reset between
// iterations.
func (r *Registry) UnfillAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, fm := range r.fields {
		fm.State = model.FillEmpty
	}
}
