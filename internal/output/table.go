package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/spigell/scholar-matcher/internal/filtering"
	"github.com/spigell/scholar-matcher/internal/recommend"
	"github.com/spigell/scholar-matcher/internal/suggest"
)

// TableTo writes data as a formatted table.
func TableTo(w io.Writer, data any) error {
	switch v := data.(type) {
	case *recommend.Result:
		return recommendationsTable(w, v)
	case []suggest.Suggestion:
		return suggestionsTable(w, v)
	case []filtering.Status:
		return filtersTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func recommendationsTable(w io.Writer, res *recommend.Result) error {
	source := "computed"
	if res.Cached {
		source = "cached"
	}
	fmt.Fprintf(w, "%s %s: %s\n", res.Agency, res.ProposalID, res.ProposalTitle)
	fmt.Fprintf(w, "algorithm %s, top %d, run %s (%s)\n", res.Algorithm, res.K, res.RunID, source)

	if len(res.Recommendations) == 0 {
		fmt.Fprintln(w, "No scholars found.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Netid", "Name", "Email", "Department", "Pubs", "Score")
	for i, r := range res.Recommendations {
		if err := table.Append(
			strconv.Itoa(i+1),
			r.Netid,
			truncate(r.Name, 30),
			r.Email,
			truncate(r.Department, 30),
			strconv.Itoa(r.NPublications),
			strconv.FormatFloat(r.Score, 'f', 2, 64),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

func suggestionsTable(w io.Writer, items []suggest.Suggestion) error {
	if len(items) == 0 {
		fmt.Fprintln(w, "No matching proposals.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header("Agency", "Proposal", "Title")
	for _, s := range items {
		if err := table.Append(s.Agency.String(), s.ProposalID, truncate(s.Title, 70)); err != nil {
			return err
		}
	}
	return table.Render()
}

func filtersTable(w io.Writer, statuses []filtering.Status) error {
	table := tablewriter.NewWriter(w)
	table.Header("Filter", "Enabled", "Reason")
	for _, s := range statuses {
		if err := table.Append(s.Name, strconv.FormatBool(s.Enabled), s.Reason); err != nil {
			return err
		}
	}
	return table.Render()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
