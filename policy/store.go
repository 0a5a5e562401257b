package policy

import (
	"sync/atomic"

	"github.com/voocel/aegis/schema"
)

// Store holds the process-wide policy snapshot. Readers never lock: the
// snapshot is immutable and replaced atomically on reload, so in-flight
// requests keep evaluating against the snapshot they started with.
type Store struct {
	current atomic.Pointer[Policy]
}

// NewStore creates a store holding the given policy, which may be nil.
func NewStore(p *Policy) *Store {
	s := &Store{}
	if p != nil {
		s.current.Store(p)
	}
	return s
}

// Open loads a policy file into a fresh store.
func Open(path string) (*Store, error) {
	p, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewStore(p), nil
}

// Current returns the active snapshot, or an error when none is loaded.
func (s *Store) Current() (*Policy, error) {
	p := s.current.Load()
	if p == nil {
		return nil, schema.ErrPolicyNotLoaded
	}
	return p, nil
}

// Replace installs a new snapshot.
func (s *Store) Replace(p *Policy) {
	s.current.Store(p)
}

// Reload loads the file and swaps the snapshot in a single pointer
// store. On failure the previous snapshot stays in effect and the error
// is surfaced to the caller.
func (s *Store) Reload(path string) error {
	p, err := Load(path)
	if err != nil {
		return err
	}
	s.current.Store(p)
	return nil
}
