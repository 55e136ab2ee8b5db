package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/scholar-matcher/internal/config"
	"github.com/spigell/scholar-matcher/internal/dataset"
)

func TestLoadErrorsNameThePathOnce(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{Data: &config.DataConfig{
		OutputPath:        dir,
		ScholarsDataset:   "scholars.csv",
		AnalyticalDataset: "analytical_data.csv",
		Agencies:          map[string]string{"nsf": "nsf.csv"},
	}}
	log := zap.NewNop()

	tests := []struct {
		name   string
		load   func() error
		prefix string
	}{
		{
			name:   "scholars",
			load:   func() error { _, err := loadScholars(cfg, log); return err },
			prefix: "loading scholars dataset",
		},
		{
			name:   "features",
			load:   func() error { _, err := loadFeatures(cfg, log); return err },
			prefix: "loading analytical dataset",
		},
		{
			name:   "proposals",
			load:   func() error { _, err := loadProposals(cfg, log, dataset.NSF); return err },
			prefix: "loading NSF proposals",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.load()
			if err == nil {
				t.Fatalf("expected an error for a missing file")
			}
			msg := err.Error()
			if n := strings.Count(msg, tt.prefix); n != 1 {
				t.Fatalf("expected %q once, got %d times in %q", tt.prefix, n, msg)
			}
			if !strings.Contains(msg, filepath.Join(dir, "")) {
				t.Fatalf("expected the path in %q", msg)
			}
		})
	}
}
