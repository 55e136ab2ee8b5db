// Package config holds the scholar-matcher configuration as read by viper.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/spigell/scholar-matcher/internal/dataset"
	"github.com/spigell/scholar-matcher/internal/filtering"
	"github.com/spigell/scholar-matcher/internal/keywords"
	"github.com/spigell/scholar-matcher/internal/rank"
	"github.com/spigell/scholar-matcher/internal/textnorm"
)

const EnvGeminiAPIKeyFile = "SCHOLAR_MATCHER_GEMINI_API_KEY_FILE"

type Config struct {
	Data            *DataConfig       `mapstructure:"data"`
	CPUCount        int               `mapstructure:"cpu-count"`
	TopK            int               `mapstructure:"top-k"`
	ProposalID      string            `mapstructure:"proposal-id"`
	Generator       string            `mapstructure:"generator"`
	Normalizer      *NormalizerConfig `mapstructure:"normalizer"`
	Weights         map[string]any    `mapstructure:"weights"`
	TaskTimeout     time.Duration     `mapstructure:"task-timeout"`
	Cache           *CacheConfig      `mapstructure:"cache"`
	Exclude         *ExcludeConfig    `mapstructure:"exclude"`
	ExcludeFile     string            `mapstructure:"exclude-file"`
	MinPublications int               `mapstructure:"min-publications"`
	Features        *FeaturesConfig   `mapstructure:"features"`
	AI              *AIConfig         `mapstructure:"ai"`
}

type DataConfig struct {
	OutputPath         string            `mapstructure:"output-path"`
	ScholarsDataset    string            `mapstructure:"scholars-dataset"`
	AnalyticalDataset  string            `mapstructure:"analytical-dataset"`
	PublicationDataset string            `mapstructure:"publication-dataset"`
	Agencies           map[string]string `mapstructure:"agencies"`
}

type NormalizerConfig struct {
	MinTokenLength int      `mapstructure:"min-token-length"`
	Lemmatizer     string   `mapstructure:"lemmatizer"`
	ExtraStopwords []string `mapstructure:"extra-stopwords"`
}

type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type ExcludeConfig struct {
	Netids []string `mapstructure:"netids"`
}

type FeaturesConfig struct {
	TopPublications     int      `mapstructure:"top-publications"`
	UniversityStopwords []string `mapstructure:"university-stopwords"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data.output-path", "Output")
	v.SetDefault("data.scholars-dataset", "scholars.csv")
	v.SetDefault("data.analytical-dataset", "analytical_data.csv")
	v.SetDefault("data.publication-dataset", "publications.csv")
	v.SetDefault("cpu-count", runtime.NumCPU())
	v.SetDefault("top-k", 20)
	v.SetDefault("generator", keywords.Spacy.String())
	v.SetDefault("normalizer.min-token-length", textnorm.DefaultMinTokenLength)
	v.SetDefault("normalizer.lemmatizer", textnorm.LemmatizerDictionary)
	v.SetDefault("task-timeout", "30s")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("features.top-publications", 5)
	v.SetDefault("ai.gemini.model", "text-embedding-004")
}

// Load decodes v into a Config and fills the sections omitted from the file.
func Load(v *viper.Viper) (*Config, error) {
	var cfg *Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Data == nil {
		cfg.Data = &DataConfig{}
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = &NormalizerConfig{MinTokenLength: textnorm.DefaultMinTokenLength}
	}
	if cfg.Cache == nil {
		cfg.Cache = &CacheConfig{}
	}
	if cfg.Exclude == nil {
		cfg.Exclude = &ExcludeConfig{}
	}
	if cfg.Features == nil {
		cfg.Features = &FeaturesConfig{}
	}
	if cfg.AI == nil {
		cfg.AI = &AIConfig{}
	}
	if cfg.AI.Gemini == nil {
		cfg.AI.Gemini = &GeminiConfig{}
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.TopK <= 0 {
		errs = append(errs, fmt.Errorf("top-k: %w", rank.ErrInvalidK))
	}
	if c.CPUCount < 0 {
		errs = append(errs, errors.New("cpu-count must not be negative"))
	}
	if c.TaskTimeout < 0 {
		errs = append(errs, errors.New("task-timeout must not be negative"))
	}
	if c.MinPublications < 0 {
		errs = append(errs, errors.New("min-publications must not be negative"))
	}
	if c.Normalizer.MinTokenLength < 0 {
		errs = append(errs, errors.New("normalizer.min-token-length must not be negative"))
	}
	switch strings.ToLower(strings.TrimSpace(c.Normalizer.Lemmatizer)) {
	case "", textnorm.LemmatizerDictionary, textnorm.LemmatizerStem, textnorm.LemmatizerNone:
	default:
		errs = append(errs, fmt.Errorf("normalizer.lemmatizer: unknown value %q", c.Normalizer.Lemmatizer))
	}
	if _, err := keywords.ParseAlgorithm(c.Generator); err != nil {
		errs = append(errs, fmt.Errorf("generator: %w", err))
	}
	if _, err := rank.WeightsFromMap(c.Weights); err != nil {
		errs = append(errs, fmt.Errorf("weights: %w", err))
	}
	if strings.TrimSpace(c.Data.ScholarsDataset) == "" {
		errs = append(errs, errors.New("data.scholars-dataset is required"))
	}
	if strings.TrimSpace(c.Data.AnalyticalDataset) == "" {
		errs = append(errs, errors.New("data.analytical-dataset is required"))
	}
	if len(c.Data.Agencies) == 0 {
		errs = append(errs, errors.New("data.agencies must map at least one agency to a proposals dataset"))
	}
	for name, file := range c.Data.Agencies {
		if _, err := dataset.ParseAgency(name); err != nil {
			errs = append(errs, fmt.Errorf("data.agencies: %w", err))
		}
		if strings.TrimSpace(file) == "" {
			errs = append(errs, fmt.Errorf("data.agencies.%s: empty path", name))
		}
	}

	return errors.Join(errs...)
}

// Path resolves name against data.output-path unless it is absolute.
func (d *DataConfig) Path(name string) string {
	if name == "" || filepath.IsAbs(name) || d.OutputPath == "" {
		return name
	}
	return filepath.Join(d.OutputPath, name)
}

// AgencyFiles returns the resolved proposals dataset per agency.
func (d *DataConfig) AgencyFiles() (map[dataset.Agency]string, error) {
	out := make(map[dataset.Agency]string, len(d.Agencies))
	for name, file := range d.Agencies {
		a, err := dataset.ParseAgency(name)
		if err != nil {
			return nil, err
		}
		out[a] = d.Path(file)
	}
	return out, nil
}

// CachePath defaults to recommendations.db under the output path.
func (c *Config) CachePath() string {
	if p := strings.TrimSpace(c.Cache.Path); p != "" {
		return p
	}
	return c.Data.Path("recommendations.db")
}

// ChannelWeights decodes the weights section; call Validate first.
func (c *Config) ChannelWeights() rank.Weights {
	w, err := rank.WeightsFromMap(c.Weights)
	if err != nil {
		return rank.DefaultWeights()
	}
	return w
}

// FilterConfig projects the candidate filter settings.
func (c *Config) FilterConfig() *filtering.Config {
	return &filtering.Config{
		ExcludedNetids:  c.Exclude.Netids,
		ExcludeFile:     c.ExcludeFile,
		MinPublications: c.MinPublications,
	}
}
