package recommend

import (
	"strings"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/proposal"
	"github.com/spigell/scholar-matcher/internal/rank"
)

// Result is the ordered recommendation list for one request.
type Result struct {
	RunID           string            `json:"run_id"`
	Agency          dataset.Agency    `json:"agency"`
	ProposalID      string            `json:"proposal_id"`
	ProposalTitle   string            `json:"proposal_title"`
	K               int               `json:"top_k"`
	Algorithm       string            `json:"algorithm"`
	Cached          bool              `json:"cached"`
	Features        proposal.Features `json:"proposal_keywords"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// Recommendation is one ranked scholar with display metadata.
type Recommendation struct {
	UserID        string             `json:"User_id"`
	Netid         string             `json:"Netid"`
	Name          string             `json:"Name"`
	Email         string             `json:"Email"`
	Type          string             `json:"Type"`
	Keywords      string             `json:"Keywords"`
	NPublications int                `json:"n_publications"`
	NResearch     int                `json:"n_research"`
	Awards        string             `json:"Awards"`
	NAwards       int                `json:"n_awards"`
	Organizations string             `json:"Organizations"`
	Course        string             `json:"Course"`
	Department    string             `json:"Department"`
	Score         float64            `json:"score"`
	Scores        map[string]float64 `json:"scores,omitempty"`
}

func newRecommendation(sc *dataset.Scholar, e rank.Entry) Recommendation {
	r := Recommendation{UserID: e.ScholarID, Score: e.Total, Scores: columnScores(e.Scores)}
	if sc == nil {
		return r
	}
	r.Netid = sc.Netid
	r.Name = sc.Name
	r.Email = sc.Email
	r.Type = sc.Type
	r.Keywords = stripQuotes(sc.Keywords)
	r.NPublications = sc.NPublications
	r.NResearch = sc.NResearch
	r.Awards = sc.Awards
	r.NAwards = sc.NAwards
	r.Organizations = sc.Organizations
	r.Course = sc.Course
	r.Department = sc.Department
	return r
}

func columnScores(s rank.Scores) map[string]float64 {
	out := make(map[string]float64, rank.NumScores)
	for _, c := range rank.Channels() {
		for _, f := range rank.Fields() {
			out[rank.ColumnName(c, f)] = s.Get(c, f)
		}
	}
	return out
}

// stripQuotes removes the quoting left by list-valued keyword exports.
func stripQuotes(s string) string {
	return strings.NewReplacer(`"`, "", `'`, "").Replace(s)
}
