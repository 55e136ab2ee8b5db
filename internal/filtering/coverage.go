package filtering

import (
	"context"

	"go.uber.org/zap"
)

type featureCoverageFilter struct{}

// NewFeatureCoverage creates a filter that removes scholars without an
// analytical dataset row. Such scholars cannot be scored.
func NewFeatureCoverage() Filter {
	return &featureCoverageFilter{}
}

func (f *featureCoverageFilter) Name() string { return "feature_coverage" }

func (f *featureCoverageFilter) Disable(string) {}

func (f *featureCoverageFilter) IsEnabled() bool { return true }

func (f *featureCoverageFilter) Validate(*Config) error { return nil }

func (f *featureCoverageFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	excluded := c.Exclude(func(cand *Candidate) bool { return cand.Features == nil })
	if len(excluded) > 0 {
		deps.Logger.Warn("skipping scholars without analytical features",
			zap.Strings("excluded_scholars", excluded),
			zap.Int("scholars_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *featureCoverageFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true}
}
