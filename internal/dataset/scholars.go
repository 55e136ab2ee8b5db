package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Scholar is the descriptive profile joined into recommendations.
type Scholar struct {
	UserID        string `csv:"User_id" json:"-"`
	Netid         string `csv:"Netid" json:"Netid"`
	Name          string `csv:"Name" json:"Name"`
	Email         string `csv:"Email" json:"Email"`
	Type          string `csv:"Type" json:"Type"`
	Keywords      string `csv:"Keywords" json:"Keywords"`
	Overview      string `csv:"Overview" json:"-"`
	Organizations string `csv:"Organizations" json:"Organizations"`
	Research      string `csv:"Research" json:"-"`
	NPublications int    `csv:"n_publications" json:"n_publications"`
	NResearch     int    `csv:"n_research" json:"n_research"`
	Awards        string `csv:"Awards" json:"Awards"`
	NAwards       int    `csv:"n_awards" json:"n_awards"`
	Course        string `csv:"Course" json:"Course"`
	Department    string `csv:"Department" json:"Department"`
}

// Scholars keeps file order and an id index.
type Scholars struct {
	Items []*Scholar
	byID  map[string]*Scholar
}

func NewScholars(items []*Scholar) *Scholars {
	s := &Scholars{Items: items, byID: make(map[string]*Scholar, len(items))}
	for _, sc := range items {
		if _, dup := s.byID[sc.UserID]; !dup {
			s.byID[sc.UserID] = sc
		}
	}
	return s
}

func (s *Scholars) Get(id string) (*Scholar, bool) {
	sc, ok := s.byID[strings.TrimSpace(id)]
	return sc, ok
}

func (s *Scholars) Len() int { return len(s.Items) }

// LoadScholars reads the scholars dataset. Rows without a User_id and
// repeats of an earlier User_id are reported as RowErrors and skipped.
func LoadScholars(path string) (*Scholars, []RowError, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading scholars dataset %q: %w", path, err)
	}
	if !table.HasColumn("User_id") {
		return nil, nil, fmt.Errorf("loading scholars dataset %q: missing User_id column", path)
	}

	var (
		items   []*Scholar
		rowErrs []RowError
		seen    = map[string]int{}
	)
	for _, row := range table.Rows {
		var sc Scholar
		if err := decodeRow(row, &sc); err != nil {
			rowErrs = append(rowErrs, RowError{Path: path, Line: row.Line, Err: err})
			continue
		}
		sc.UserID = strings.TrimSpace(sc.UserID)
		if sc.UserID == "" {
			rowErrs = append(rowErrs, RowError{Path: path, Line: row.Line, Err: errors.New("empty User_id")})
			continue
		}
		if first, dup := seen[sc.UserID]; dup {
			rowErrs = append(rowErrs, RowError{Path: path, Line: row.Line, Err: fmt.Errorf("duplicate User_id %q, first seen on line %d", sc.UserID, first)})
			continue
		}
		seen[sc.UserID] = row.Line
		items = append(items, &sc)
	}
	return NewScholars(items), rowErrs, nil
}
