package rank

import (
	"fmt"
	"strings"
)

// Channel is one of the five precomputed scholar text sources.
type Channel int

const (
	Keywords Channel = iota
	Overview
	Organization
	PubKeyword
	PubTitle
)

// NumChannels and NumFields span the score matrix of one scholar.
const (
	NumChannels = 5
	NumFields   = 3
	NumScores   = NumChannels * NumFields
)

var channelNames = [NumChannels]string{"Keywords", "Overview", "Organization", "pub_keyword", "pub_title"}

func (c Channel) String() string {
	if c < 0 || int(c) >= NumChannels {
		return fmt.Sprintf("Channel(%d)", int(c))
	}
	return channelNames[c]
}

// Channels lists every channel in column order.
func Channels() []Channel {
	return []Channel{Keywords, Overview, Organization, PubKeyword, PubTitle}
}

// ParseChannel matches channel names case-insensitively; dashes and
// underscores are interchangeable.
func ParseChannel(name string) (Channel, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, n := range channelNames {
		if strings.ToLower(n) == key {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("unknown channel %q", name)
}

// Field is one of the proposal text sections.
type Field int

const (
	Description Field = iota
	Title
	Department
)

var fieldNames = [NumFields]string{"desc", "title", "dept"}

func (f Field) String() string {
	if f < 0 || int(f) >= NumFields {
		return fmt.Sprintf("Field(%d)", int(f))
	}
	return fieldNames[f]
}

func Fields() []Field {
	return []Field{Description, Title, Department}
}

// ColumnName returns the per-pair score column, e.g. Keywords_desc_sim.
func ColumnName(c Channel, f Field) string {
	return c.String() + "_" + f.String() + "_sim"
}

// ColumnNames lists all fifteen score columns in channel-major order.
func ColumnNames() []string {
	names := make([]string, 0, NumScores)
	for _, c := range Channels() {
		for _, f := range Fields() {
			names = append(names, ColumnName(c, f))
		}
	}
	return names
}
