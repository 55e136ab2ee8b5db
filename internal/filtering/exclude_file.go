package filtering

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ExcludedScholars is the on-disk list of scholars that must not be
// recommended again, for example because they were already contacted.
type ExcludedScholars struct {
	Items []*ExcludedScholar
}

type ExcludedScholar struct {
	UserID     string
	Netid      string
	ProposalID string
	ExcludedAt time.Time
}

// ReadExcludeFile loads an exclude list. An empty file is an empty list.
func ReadExcludeFile(path string) (*ExcludedScholars, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}
	if stat.Size() == 0 {
		return &ExcludedScholars{}, nil
	}

	var excluded ExcludedScholars
	if err := json.NewDecoder(file).Decode(&excluded); err != nil {
		return nil, err
	}
	return &excluded, nil
}

func (e *ExcludedScholars) Append(s *ExcludedScholars) {
	e.Items = append(e.Items, s.Items...)
}

func (e *ExcludedScholars) UserIDs() []string {
	ids := make([]string, 0, len(e.Items))
	for _, item := range e.Items {
		ids = append(ids, item.UserID)
	}
	return ids
}

// ToFile overwrites path with the list.
func (e *ExcludedScholars) ToFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes scholars listed in the exclude file.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, c *Candidates) (*Candidates, Step, error) {
	initial := c.Len()
	if f.path == "" {
		return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
	}

	excluded, err := ReadExcludeFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			deps.Logger.Debug("exclude file does not exist yet", zap.String("path", f.path))
			return c, Step{Initial: initial, Dropped: 0, Left: c.Len()}, nil
		}
		return c, Step{}, fmt.Errorf("getting excluded scholars from file: %w", err)
	}

	ids := make(map[string]struct{}, len(excluded.Items))
	for _, id := range excluded.UserIDs() {
		ids[id] = struct{}{}
	}
	removed := c.Exclude(func(cand *Candidate) bool {
		_, ok := ids[cand.ID]
		return ok
	})
	if len(removed) > 0 {
		deps.Logger.Info("excluding scholars based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_scholars", removed),
			zap.Int("scholars_left", c.Len()),
		)
	}

	return c, Step{Initial: initial, Dropped: len(removed), Left: c.Len()}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
