package fixtures

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/spf13/afero"
)

func testLib(t *testing.T) *Library {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, p := range []string{
		"pictures/Male/a.jpeg",
		"pictures/Male/b.jpeg",
		"pictures/Female/c.jpeg",
		"pictures/Male/notes.txt",
		"pictures/invalid_picture.txt",
	} {
		if err := afero.WriteFile(fs, p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return New(fs, "pictures")
}

func TestPicturesFiltersAndSorts(t *testing.T) {
	l := testLib(t)
	pics, err := l.Pictures("Male")
	if err != nil {
		t.Fatal(err)
	}
	if len(pics) != 2 {
		t.Fatalf("got %d pictures, want 2: %v", len(pics), pics)
	}
	if !strings.HasSuffix(pics[0], "a.jpeg") || !strings.HasSuffix(pics[1], "b.jpeg") {
		t.Errorf("pictures unsorted or misfiltered: %v", pics)
	}
}

func TestPicturesUnknownGender(t *testing.T) {
	l := testLib(t)
	if _, err := l.Pictures("Other"); err == nil {
		t.Error("Pictures(Other) succeeded with no fixture dir")
	}
}

func TestPickStaysInsideGender(t *testing.T) {
	l := testLib(t)
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 20; i++ {
		p, err := l.Pick(r, "Female")
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(p, "Female") {
			t.Errorf("Pick(Female) = %q", p)
		}
	}
}

func TestInvalidSample(t *testing.T) {
	l := testLib(t)
	if got := l.InvalidSample(); !strings.HasSuffix(got, "invalid_picture.txt") {
		t.Errorf("InvalidSample() = %q", got)
	}
}
