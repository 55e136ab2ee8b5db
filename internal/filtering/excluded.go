package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type excludedScholarsFilter struct {
	disabled bool
	reason   string
	netids   map[string]struct{}
	list     []string
}

// NewExcludedScholars creates a filter that removes scholars whose netid is
// listed in the config.
func NewExcludedScholars() Filter {
	return &excludedScholarsFilter{}
}

func (f *excludedScholarsFilter) Name() string { return "excluded_scholars" }

func (f *excludedScholarsFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *excludedScholarsFilter) IsEnabled() bool { return !f.disabled }

func (f *excludedScholarsFilter) Validate(cfg *Config) error {
	f.netids = map[string]struct{}{}
	f.list = nil
	if cfg == nil {
		return nil
	}
	for _, id := range cfg.ExcludedNetids {
		id = strings.ToLower(strings.TrimSpace(id))
		if id == "" {
			continue
		}
		f.netids[id] = struct{}{}
		f.list = append(f.list, id)
	}
	return nil
}

func (f *excludedScholarsFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if len(f.netids) == 0 {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded := c.Exclude(func(cand *Candidate) bool {
		_, ok := f.netids[strings.ToLower(cand.Netid())]
		return ok
	})
	if len(excluded) > 0 {
		deps.Logger.Info("excluding scholars by netid",
			zap.Strings("excluded_netids", f.list),
			zap.Strings("excluded_scholars", excluded),
			zap.Int("scholars_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(excluded), Left: c.Len()}, nil
}

func (f *excludedScholarsFilter) Status() Status {
	details := map[string]string{}
	if len(f.list) > 0 {
		details["netids"] = strings.Join(f.list, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
