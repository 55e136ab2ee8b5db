package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006-01",
	"2006",
}

// Publication is one article attributed to a scholar.
type Publication struct {
	UserID   string    `csv:"user_id"`
	Title    string    `csv:"title"`
	Keywords string    `csv:"keywords"`
	RawDate  string    `csv:"publicationDate"`
	Date     time.Time `csv:"-"`
}

// LoadPublications reads the publications dataset. Unparseable dates load as
// the zero time so the publication sorts as the oldest.
func LoadPublications(path string) ([]Publication, []RowError, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading publication dataset %q: %w", path, err)
	}
	if !table.HasColumn("user_id") {
		return nil, nil, fmt.Errorf("loading publication dataset %q: missing user_id column", path)
	}

	var (
		pubs    []Publication
		rowErrs []RowError
	)
	for _, row := range table.Rows {
		var p Publication
		if err := decodeRow(row, &p); err != nil {
			rowErrs = append(rowErrs, RowError{Path: path, Line: row.Line, Err: err})
			continue
		}
		p.UserID = strings.TrimSpace(p.UserID)
		if p.UserID == "" {
			rowErrs = append(rowErrs, RowError{Path: path, Line: row.Line, Err: errors.New("empty user_id")})
			continue
		}
		p.Date = ParseDate(p.RawDate)
		pubs = append(pubs, p)
	}
	return pubs, rowErrs, nil
}

// ParseDate tries the date layouts seen in publication exports.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
