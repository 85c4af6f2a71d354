// Package cache persists discovered domains to a single structured
// file so repeated runs can skip the expensive alphabet sweeps. The
// file is read once at process start and treated as immutable for the
// run's duration.
package cache

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"formprobe/internal/logger"
	"formprobe/pkg/model"
)

// ErrMiss reports an absent cache file; callers respond with a full
// re-scan.
var ErrMiss = errors.New("domain cache miss")

// Store reads and writes the cache file as a whole.
type Store struct {
	fs   afero.Fs
	path string
	log  logger.Logger
}

func NewStore(fs afero.Fs, path string, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNop()
	}
	return &Store{fs: fs, path: path, log: log}
}

// Load parses the cache file into a DomainSet.
func (s *Store) Load() (model.DomainSet, error) {
	b, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.DomainSet{}, fmt.Errorf("%s: %w", s.path, ErrMiss)
		}
		return model.DomainSet{}, fmt.Errorf("read cache: %w", err)
	}
	if !gjson.ValidBytes(b) {
		return model.DomainSet{}, fmt.Errorf("cache %s holds invalid JSON", s.path)
	}

	root := gjson.ParseBytes(b)
	ds := model.DomainSet{
		Genders:      domainOf(root.Get("genders")),
		Hobbies:      domainOf(root.Get("hobbies")),
		Subjects:     domainOf(root.Get("subjects")),
		StateCityMap: make(model.Hierarchy),
	}
	root.Get("state_city_map").ForEach(func(key, value gjson.Result) bool {
		ds.StateCityMap[key.String()] = domainOf(value)
		return true
	})
	s.log.Info("domain cache loaded",
		"path", s.path,
		"genders", len(ds.Genders),
		"hobbies", len(ds.Hobbies),
		"subjects", len(ds.Subjects),
		"states", len(ds.StateCityMap))
	return ds, nil
}

// Save writes the whole DomainSet, replacing any previous file.
func (s *Store) Save(ds model.DomainSet) error {
	b := []byte(`{}`)
	var err error
	if b, err = sjson.SetBytes(b, "genders", ds.Genders); err != nil {
		return fmt.Errorf("encode genders: %w", err)
	}
	if b, err = sjson.SetBytes(b, "hobbies", ds.Hobbies); err != nil {
		return fmt.Errorf("encode hobbies: %w", err)
	}
	if b, err = sjson.SetBytes(b, "subjects", ds.Subjects); err != nil {
		return fmt.Errorf("encode subjects: %w", err)
	}
	if len(ds.StateCityMap) == 0 {
		if b, err = sjson.SetRawBytes(b, "state_city_map", []byte(`{}`)); err != nil {
			return fmt.Errorf("encode state_city_map: %w", err)
		}
	}
	for _, state := range ds.StateCityMap.Parents() {
		if b, err = sjson.SetBytes(b, "state_city_map."+escapeKey(state), ds.StateCityMap[state]); err != nil {
			return fmt.Errorf("encode cities of %q: %w", state, err)
		}
	}
	if err := afero.WriteFile(s.fs, s.path, b, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	s.log.Info("domain cache written", "path", s.path, "bytes", len(b))
	return nil
}

// escapeKey protects sjson path separators inside state names.
func escapeKey(k string) string {
	out := make([]byte, 0, len(k))
	for i := 0; i < len(k); i++ {
		if k[i] == '.' || k[i] == '*' || k[i] == '?' {
			out = append(out, '\\')
		}
		out = append(out, k[i])
	}
	return string(out)
}

func domainOf(res gjson.Result) model.Domain {
	arr := res.Array()
	out := make(model.Domain, 0, len(arr))
	for _, v := range arr {
		out = append(out, v.String())
	}
	return out
}
