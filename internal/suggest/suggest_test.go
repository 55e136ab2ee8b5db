package suggest

import (
	"testing"

	"github.com/spigell/scholar-matcher/internal/dataset"
)

func fixture() *Index {
	return Build(map[dataset.Agency]*dataset.Proposals{
		dataset.NSF: dataset.NewProposals(dataset.NSF, []*dataset.Proposal{
			{ID: "NSF-1", Title: "Coral Reef Dynamics"},
			{ID: "NSF-2", Title: "Dynamics of Coral Reef Recovery"},
			{ID: "NSF-3", Title: "Quantum Computing Testbeds"},
		}),
		dataset.NIH: dataset.NewProposals(dataset.NIH, []*dataset.Proposal{
			{ID: "NIH-1", Title: "Clinical Trials of Reef-derived Compounds"},
		}),
	})
}

func TestSearchPrefixBeforeSubstring(t *testing.T) {
	idx := fixture()

	got := idx.Search("  Coral   reef ", 10)
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %+v", got)
	}
	if got[0].ProposalID != "NSF-1" || got[1].ProposalID != "NSF-2" {
		t.Fatalf("unexpected order: %+v", got)
	}

	got = idx.Search("reef", 10)
	ids := map[string]bool{}
	for _, s := range got {
		ids[s.ProposalID] = true
	}
	for _, want := range []string{"NSF-1", "NSF-2", "NIH-1"} {
		if !ids[want] {
			t.Fatalf("expected %s in %+v", want, got)
		}
	}
	if got[len(got)-1].ProposalID != "NIH-1" || got[len(got)-1].Agency != dataset.NIH {
		t.Fatalf("expected substring match last, got %+v", got)
	}
}

func TestSearchLimitsAndEmpty(t *testing.T) {
	idx := fixture()

	if got := idx.Search("reef", 1); len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %+v", got)
	}
	if got := idx.Search("", 10); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %+v", got)
	}
	if got := idx.Search("astronomy", 10); len(got) != 0 {
		t.Fatalf("expected no suggestions, got %+v", got)
	}
}
