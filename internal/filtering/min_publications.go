package filtering

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
)

type minPublicationsFilter struct {
	min int
}

// NewMinPublications creates a filter that removes scholars with fewer
// publications than configured.
func NewMinPublications() Filter {
	return &minPublicationsFilter{}
}

func (f *minPublicationsFilter) Name() string { return "min_publications" }

func (f *minPublicationsFilter) Disable(string) {}

func (f *minPublicationsFilter) IsEnabled() bool { return true }

func (f *minPublicationsFilter) Validate(cfg *Config) error {
	f.min = 0
	if cfg == nil {
		return nil
	}
	if cfg.MinPublications < 0 {
		return errors.New("min-publications must not be negative")
	}
	f.min = cfg.MinPublications
	return nil
}

func (f *minPublicationsFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.min == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(func(cand *Candidate) bool {
		return cand.Scholar == nil || cand.Scholar.NPublications < f.min
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding scholars below the publication threshold",
			zap.Int("min_publications", f.min),
			zap.Int("excluded", len(excluded)),
			zap.Int("scholars_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *minPublicationsFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: true, Details: map[string]string{
		"min_publications": strconv.Itoa(f.min),
	}}
}
