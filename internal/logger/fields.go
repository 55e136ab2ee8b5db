package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldAgency    = "agency"
	FieldProposal  = "proposal_id"
	FieldAlgorithm = "algorithm"
	FieldScholar   = "scholar_id"
	FieldRunID     = "run_id"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields attaches fields to logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// RequestFields describe one recommendation request.
func RequestFields(agency, proposalID, algorithm string) []zap.Field {
	return StringFields(
		StringField{Key: FieldAgency, Value: agency},
		StringField{Key: FieldProposal, Value: proposalID},
		StringField{Key: FieldAlgorithm, Value: algorithm},
	)
}

func WithRequestFields(logger *zap.Logger, agency, proposalID, algorithm string) *zap.Logger {
	return WithFields(logger, RequestFields(agency, proposalID, algorithm)...)
}
