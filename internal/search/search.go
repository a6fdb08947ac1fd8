// Package search holds the free-text query and categorical filters shared
// between the navbar input and the board view. A single Store is passed by
// pointer to every component that reads or mutates it.
package search

import (
	"strings"
	"sync"

	"github.com/nhle/sprintboard/internal/api"
)

// Filters narrows the board by the optional categorical fields. An empty
// value means "no filter" for that field; no validation is applied.
type Filters struct {
	WorkType string
	WorkFlow string
	Priority string
}

// Empty reports whether no categorical filter is set.
func (f Filters) Empty() bool {
	return f.WorkType == "" && f.WorkFlow == "" && f.Priority == ""
}

// TaskFilters converts the filters to their API query representation.
func (f Filters) TaskFilters() api.TaskFilters {
	return api.TaskFilters{
		WorkType: f.WorkType,
		WorkFlow: f.WorkFlow,
		Priority: f.Priority,
	}
}

// Store is the shared search/filter state.
type Store struct {
	mu      sync.RWMutex
	query   string
	filters Filters
}

// New creates an empty search store.
func New() *Store {
	return &Store{}
}

// Query returns the current free-text query.
func (s *Store) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery replaces the free-text query. An empty or blank string leaves
// search mode.
func (s *Store) SetQuery(query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()
}

// Searching reports whether a non-blank query is active.
func (s *Store) Searching() bool {
	return strings.TrimSpace(s.Query()) != ""
}

// Filters returns a copy of the current categorical filters.
func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetFilters replaces the categorical filters wholesale.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	s.filters = f
	s.mu.Unlock()
}

// SetWorkType sets or, with an empty value, clears the work type filter.
func (s *Store) SetWorkType(v string) {
	s.mu.Lock()
	s.filters.WorkType = v
	s.mu.Unlock()
}

// SetWorkFlow sets or, with an empty value, clears the workflow filter.
func (s *Store) SetWorkFlow(v string) {
	s.mu.Lock()
	s.filters.WorkFlow = v
	s.mu.Unlock()
}

// SetPriority sets or, with an empty value, clears the priority filter.
func (s *Store) SetPriority(v string) {
	s.mu.Lock()
	s.filters.Priority = v
	s.mu.Unlock()
}

// Clear resets the query and every filter.
func (s *Store) Clear() {
	s.mu.Lock()
	s.query = ""
	s.filters = Filters{}
	s.mu.Unlock()
}
