package dataset

import (
	"fmt"
	"strings"
)

// Agency is a grant awarding agency.
type Agency string

const (
	NSF Agency = "nsf"
	NIH Agency = "nih"
)

var agencyNames = map[Agency]string{
	NSF: "National Science Foundation",
	NIH: "National Institutes of Health",
}

// Agencies lists the supported agencies.
func Agencies() []Agency { return []Agency{NSF, NIH} }

// ParseAgency accepts the short code in any case or the full agency name.
func ParseAgency(s string) (Agency, error) {
	key := strings.TrimSpace(s)
	for a, full := range agencyNames {
		if strings.EqualFold(key, string(a)) || strings.EqualFold(key, full) {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAgency, s)
}

func (a Agency) FullName() string {
	if name, ok := agencyNames[a]; ok {
		return name
	}
	return string(a)
}

func (a Agency) String() string { return strings.ToUpper(string(a)) }
