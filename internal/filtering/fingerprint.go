package filtering

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// Fingerprint digests everything that decides which scholars survive the
// chain: the config values, the exclude file contents and which steps are
// enabled. Equal fingerprints mean equal candidate pools for the same data.
func Fingerprint(cfg *Config, steps []Filter) (string, error) {
	h := sha256.New()

	for _, step := range steps {
		fmt.Fprintf(h, "step=%s enabled=%t\n", step.Name(), step.IsEnabled())
	}

	if cfg == nil {
		cfg = &Config{}
	}

	netids := make([]string, 0, len(cfg.ExcludedNetids))
	for _, id := range cfg.ExcludedNetids {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			netids = append(netids, id)
		}
	}
	slices.Sort(netids)
	netids = slices.Compact(netids)
	fmt.Fprintf(h, "netids=%s\n", strings.Join(netids, ","))
	fmt.Fprintf(h, "min_publications=%d\n", cfg.MinPublications)

	path := strings.TrimSpace(cfg.ExcludeFile)
	fmt.Fprintf(h, "exclude_file=%s\n", path)
	if path != "" {
		if err := hashFile(h, path); err != nil {
			return "", fmt.Errorf("fingerprinting exclude file: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		_, err = io.WriteString(w, "absent\n")
		return err
	}
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(w, file)
	return err
}
