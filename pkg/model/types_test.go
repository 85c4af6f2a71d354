package model

import (
	"testing"
	"time"
)

func TestExpectedConfirmationFormatting(t *testing.T) {
	r := Record{
		FirstName:   "Bob",
		LastName:    "Alice",
		Email:       "bob.alice@example.com",
		Gender:      "Male",
		Mobile:      "1234567890",
		DateOfBirth: time.Date(2005, time.March, 7, 0, 0, 0, 0, time.UTC),
		Subjects:    []string{"Maths", "Physics"},
		Hobbies:     []string{"Sports", "Reading", "Music"},
		Picture:     "/fixtures/Male/sample_1.jpeg",
		Address:     "Somewhere 1",
		State:       "NCR",
		City:        "Delhi",
	}

	got := r.ExpectedConfirmation()
	want := map[string]string{
		"Student Name":   "Bob Alice",
		"Student Email":  "bob.alice@example.com",
		"Gender":         "Male",
		"Mobile":         "1234567890",
		"Date of Birth":  "07 March,2005",
		"Subjects":       "Maths, Physics",
		"Hobbies":        "Sports, Reading, Music",
		"Picture":        "sample_1.jpeg",
		"Address":        "Somewhere 1",
		"State and City": "NCR Delhi",
	}
	for label, exp := range want {
		if got[label] != exp {
			t.Errorf("%s = %q, want %q", label, got[label], exp)
		}
	}
}

func TestDomainSortAndContains(t *testing.T) {
	d := Domain{"Physics", "Arts", "Maths"}
	d.Sort()
	if d[0] != "Arts" || d[1] != "Maths" || d[2] != "Physics" {
		t.Errorf("Sort() = %v", d)
	}
	if !d.Contains("Maths") {
		t.Error("Contains(Maths) = false")
	}
	if d.Contains("Biology") {
		t.Error("Contains(Biology) = true")
	}
}

func TestHierarchyParentsOrdered(t *testing.T) {
	h := Hierarchy{
		"Uttar Pradesh": {"Agra"},
		"Haryana":       {"Karnal"},
		"NCR":           {"Delhi"},
	}
	p := h.Parents()
	if len(p) != 3 || p[0] != "Haryana" || p[1] != "NCR" || p[2] != "Uttar Pradesh" {
		t.Errorf("Parents() = %v", p)
	}
}

func TestTestCaseCloneIsIndependent(t *testing.T) {
	base := TestCase{FirstName: "Bob", Mobile: "1234567890"}
	c := base.Clone()
	c[Mobile] = nil
	if base[Mobile] != "1234567890" {
		t.Error("Clone() shares storage with base")
	}
}
