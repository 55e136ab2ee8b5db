package dataset

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Proposal is one open funding opportunity.
type Proposal struct {
	ID          string `csv:"Opportunity Number" json:"id"`
	URL         string `csv:"URL" json:"url,omitempty"`
	Title       string `csv:"Title" json:"title"`
	Department  string `csv:"Department" json:"department"`
	Description string `csv:"Description" json:"description"`
	CloseDate   string `csv:"CloseDate" json:"close_date,omitempty"`
}

// Proposals is the set of opportunities of one agency.
type Proposals struct {
	Agency Agency
	Items  []*Proposal
	byID   map[string]*Proposal
}

func NewProposals(agency Agency, items []*Proposal) *Proposals {
	p := &Proposals{Agency: agency, Items: items, byID: make(map[string]*Proposal, len(items))}
	for _, item := range items {
		key := proposalKey(item.ID)
		// The first row wins for duplicated identifiers.
		if _, dup := p.byID[key]; !dup {
			p.byID[key] = item
		}
	}
	return p
}

// Find looks a proposal up by opportunity number, ignoring case and
// surrounding whitespace.
func (p *Proposals) Find(id string) (*Proposal, error) {
	if item, ok := p.byID[proposalKey(id)]; ok {
		return item, nil
	}
	return nil, fmt.Errorf("proposal %q for %s: %w", id, p.Agency, ErrNotFound)
}

func (p *Proposals) Len() int { return len(p.Items) }

func proposalKey(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// LoadProposals reads an agency proposals dataset. Missing cells become empty
// strings and HTML in descriptions is reduced to text.
func LoadProposals(agency Agency, path string) (*Proposals, error) {
	table, err := ReadTable(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s proposals %q: %w", agency, path, err)
	}
	if !table.HasColumn("Opportunity Number") {
		return nil, fmt.Errorf("loading %s proposals %q: missing Opportunity Number column", agency, path)
	}

	items := make([]*Proposal, 0, len(table.Rows))
	for _, row := range table.Rows {
		var p Proposal
		if err := decodeRow(row, &p); err != nil {
			return nil, fmt.Errorf("loading %s proposals %q line %d: %w", agency, path, row.Line, err)
		}
		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			continue
		}
		p.Description = HTMLToText(p.Description)
		p.Title = HTMLToText(p.Title)
		items = append(items, &p)
	}
	return NewProposals(agency, items), nil
}

// HTMLToText strips markup and collapses whitespace. Plain text only has its
// whitespace collapsed.
func HTMLToText(s string) string {
	if strings.ContainsRune(s, '<') && strings.ContainsRune(s, '>') {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
		if err == nil {
			doc.Find("script, style").Remove()
			s = doc.Text()
		}
	}
	return strings.Join(strings.Fields(s), " ")
}
