// Package fixtures resolves labeled sample pictures: one subdirectory
// per gender value holding .jpeg samples, plus a text file of the
// wrong format for the invalid-picture case.
package fixtures

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const invalidSampleName = "invalid_picture.txt"

// Library is a read-only view over the pictures directory.
type Library struct {
	fs  afero.Fs
	dir string
}

func New(fs afero.Fs, dir string) *Library {
	return &Library{fs: fs, dir: dir}
}

// Pictures lists the .jpeg samples for a gender, sorted for stable
// sampling indices.
func (l *Library) Pictures(gender string) ([]string, error) {
	dir := filepath.Join(l.dir, gender)
	entries, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read fixtures for %q: %w", gender, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jpeg") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no .jpeg samples for %q in %s", gender, dir)
	}
	sort.Strings(out)
	return out, nil
}

// Pick samples one picture for the gender.
func (l *Library) Pick(r *rand.Rand, gender string) (string, error) {
	pics, err := l.Pictures(gender)
	if err != nil {
		return "", err
	}
	return pics[r.Intn(len(pics))], nil
}

// InvalidSample returns the path of the wrong-format sample.
func (l *Library) InvalidSample() string {
	return filepath.Join(l.dir, invalidSampleName)
}
