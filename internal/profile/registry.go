package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"gopkg.in/yaml.v3"
)

// key identifies a Profile by its (owner, repo, commit) triple.
type key struct {
	owner, repo, commit string
}

// Registry holds the set of Profiles loaded for a run, keyed by
// (owner, repo, commit). It enforces the invariant from spec §3: a given
// triple yields exactly one Profile, and two Profiles agreeing on the triple
// must agree on every other field.
type Registry struct {
	profiles map[key]*Profile
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{profiles: make(map[key]*Profile)}
}

// LoadDir reads every *.yaml/*.yml file in dir as a single Profile document
// and adds it to the Registry.
func (r *Registry) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("profile: read dir %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		if err := r.LoadFile(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// LoadFile parses path as a single Profile YAML document and adds it.
func (r *Registry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("profile: read %s: %w", path, err)
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("profile: parse %s: %w", path, err)
	}
	return r.Add(&p)
}

// Add registers p, validating it and enforcing that any previously
// registered Profile with the same (owner, repo, commit) is field-for-field
// identical.
func (r *Registry) Add(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	k := key{p.Owner, p.Repo, p.Commit}
	if existing, ok := r.profiles[k]; ok {
		if !reflect.DeepEqual(existing, p) {
			return fmt.Errorf("profile: conflicting profiles for %s/%s@%s", p.Owner, p.Repo, p.Commit)
		}
		return nil
	}
	r.profiles[k] = p
	return nil
}

// Get returns the Profile for (owner, repo, commit), or false if none is
// registered.
func (r *Registry) Get(owner, repo, commit string) (*Profile, bool) {
	p, ok := r.profiles[key{owner, repo, commit}]
	return p, ok
}

// MustGet is like Get but returns an error instead of a boolean, for callers
// that treat a missing profile as fatal.
func (r *Registry) MustGet(owner, repo, commit string) (*Profile, error) {
	p, ok := r.Get(owner, repo, commit)
	if !ok {
		return nil, fmt.Errorf("profile: no profile registered for %s/%s@%s", owner, repo, commit)
	}
	return p, nil
}

// All returns every registered Profile, in no particular order.
func (r *Registry) All() []*Profile {
	out := make([]*Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out
}
