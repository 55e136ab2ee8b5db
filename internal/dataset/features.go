package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spigell/scholar-matcher/internal/rank"
)

// FeatureColumns is the header of the analytical dataset.
var FeatureColumns = []string{"user_id", "Netid", "Email", "Keywords", "Overview", "Organization", "pub_keyword", "pub_title"}

// ProfileFeatures holds the five pre-tokenized, space-joined channel texts of
// one scholar.
type ProfileFeatures struct {
	UserID       string `csv:"user_id"`
	Netid        string `csv:"Netid"`
	Email        string `csv:"Email"`
	Keywords     string `csv:"Keywords"`
	Overview     string `csv:"Overview"`
	Organization string `csv:"Organization"`
	PubKeyword   string `csv:"pub_keyword"`
	PubTitle     string `csv:"pub_title"`
}

// Channel returns the text of channel c. Unknown channels are empty.
func (p ProfileFeatures) Channel(c rank.Channel) string {
	switch c {
	case rank.Keywords:
		return p.Keywords
	case rank.Overview:
		return p.Overview
	case rank.Organization:
		return p.Organization
	case rank.PubKeyword:
		return p.PubKeyword
	case rank.PubTitle:
		return p.PubTitle
	default:
		return ""
	}
}

// FeatureStore is read-only once loaded and safe for concurrent readers.
type FeatureStore struct {
	items []ProfileFeatures
	byID  map[string]int
}

func NewFeatureStore(items []ProfileFeatures) *FeatureStore {
	s := &FeatureStore{items: items, byID: make(map[string]int, len(items))}
	for i, it := range items {
		if _, dup := s.byID[it.UserID]; !dup {
			s.byID[it.UserID] = i
		}
	}
	return s
}

func (s *FeatureStore) Get(id string) (ProfileFeatures, bool) {
	i, ok := s.byID[strings.TrimSpace(id)]
	if !ok {
		return ProfileFeatures{}, false
	}
	return s.items[i], true
}

// All returns the profiles in file order.
func (s *FeatureStore) All() []ProfileFeatures { return s.items }

func (s *FeatureStore) Len() int { return len(s.items) }

// LoadFeatures reads the analytical dataset. Rows without user_id are
// reported and skipped. Absent channel cells load as empty text.
func LoadFeatures(path string) (*FeatureStore, []RowError, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading analytical dataset %q: %w", path, err)
	}
	if !table.HasColumn("user_id") {
		return nil, nil, fmt.Errorf("loading analytical dataset %q: missing user_id column", path)
	}

	var (
		items   []ProfileFeatures
		rowErrs []RowError
	)
	for _, row := range table.Rows {
		var pf ProfileFeatures
		if err := decodeRow(row, &pf); err != nil {
			rowErrs = append(rowErrs, RowError{Path: path, Line: row.Line, Err: err})
			continue
		}
		pf.UserID = strings.TrimSpace(pf.UserID)
		if pf.UserID == "" {
			rowErrs = append(rowErrs, RowError{Path: path, Line: row.Line, Err: errors.New("empty user_id")})
			continue
		}
		items = append(items, pf)
	}
	return NewFeatureStore(items), rowErrs, nil
}

// WriteFeatures writes rows in the analytical dataset layout.
func WriteFeatures(w io.Writer, rows []ProfileFeatures) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(FeatureColumns); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{r.UserID, r.Netid, r.Email, r.Keywords, r.Overview, r.Organization, r.PubKeyword, r.PubTitle}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
