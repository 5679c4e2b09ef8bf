// Package state persists the token, query and seen alert ids between runs.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"

	"github.com/prismanotify/prismanotify/internal/query"
)

// State is the document carried from one run to the next.
type State struct {
	Token  *string     `json:"token,omitempty"`
	Query  query.Query `json:"query"`
	Alerts []string    `json:"alerts"`
}

// Default is the state of a first run: no token, the default query and no
// seen alerts.
func Default() *State {
	return &State{
		Query:  query.Default(),
		Alerts: []string{},
	}
}

// TokenValue returns the stored token or "".
func (s *State) TokenValue() string {
	if s.Token == nil {
		return ""
	}
	return *s.Token
}

// SetToken stores token, clearing the field when it is empty.
func (s *State) SetToken(token string) {
	if token == "" {
		s.Token = nil
		return
	}
	s.Token = &token
}

// Store reads and writes a State document at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the state document
func (s *Store) Path() string {
	return s.path
}

// Load reads the state document. A missing file yields Default, and query
// filters or time range absent from the document take their defaults. Any
// other read or decode failure is returned. Comments and trailing commas are
// accepted so the file can be edited by hand.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state %s: %w", s.path, err)
	}

	clean := jsonc.ToJSON(data)
	var st State
	if err := json.Unmarshal(clean, &st); err != nil {
		return nil, fmt.Errorf("parsing state %s: %w", s.path, err)
	}
	if !gjson.GetBytes(clean, "query.filters").Exists() {
		st.Query.Filters = query.DefaultFilters()
	}
	if !gjson.GetBytes(clean, "query.timeRange").Exists() {
		st.Query.TimeRange = query.DefaultTimeRange()
	}
	if st.Alerts == nil {
		st.Alerts = []string{}
	}
	return &st, nil
}

// Save writes st as indented JSON, replacing the previous document
// atomically through a temp file in the same directory.
func (s *Store) Save(st *State) error {
	if st.Alerts == nil {
		st.Alerts = []string{}
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("creating temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("renaming state file to %s: %w", s.path, err)
	}

	success = true
	return nil
}
