// Package config holds service configuration: defaults, an optional YAML
// file and EARLYEDGE_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Modality names accepted in Modalities.
const (
	Spelling        = "spelling"
	Handwriting     = "handwriting"
	Phono           = "phono"
	Arithmetic      = "arithmetic"
	NumberSense     = "number_sense"
	Tracing         = "tracing"
	LetterConfusion = "letter_confusion"
)

// AllModalities lists every screen in registry order.
var AllModalities = []string{Spelling, Handwriting, Phono, Arithmetic, NumberSense, Tracing, LetterConfusion}

// Config holds all service configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`

	// ModelsDir and DataDir resolve relative artifact and dataset paths.
	ModelsDir string `yaml:"models_dir"`
	DataDir   string `yaml:"data_dir"`

	// AudioDir holds the spelling recordings served under /audio.
	AudioDir string `yaml:"audio_dir"`

	Models ModelFiles `yaml:"models"`
	Data   DataFiles  `yaml:"data"`

	// Modalities selects the screens to load. Default: all.
	Modalities []string `yaml:"modalities"`

	// HandwritingMaxFiles caps images per handwriting request. Default: 3.
	HandwritingMaxFiles int `yaml:"handwriting_max_files"`

	// ONNXLibrary is the onnxruntime shared library. Empty disables onnx
	// classifiers.
	ONNXLibrary string `yaml:"onnx_library"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes"`
}

// ModelFiles names the artifact of each screen, relative to ModelsDir.
type ModelFiles struct {
	Spelling        string `yaml:"spelling"`
	Handwriting     string `yaml:"handwriting"`
	Phono           string `yaml:"phono"`
	Arithmetic      string `yaml:"arithmetic"`
	NumberSense     string `yaml:"number_sense"`
	Tracing         string `yaml:"tracing"`
	LetterConfusion string `yaml:"letter_confusion"`
}

// DataFiles names the CSV banks, relative to DataDir.
type DataFiles struct {
	SpellingItems   string `yaml:"spelling_items"`
	SpellingKey     string `yaml:"spelling_key"`
	NumberQuestions string `yaml:"number_questions"`
	PhonoQuestions  string `yaml:"phono_questions"`
}

// DefaultConfig returns a Config laid out like the service's working
// directory: models/, data/ and audio/correct/.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			MaxUploadBytes:  10 << 20,
		},
		ModelsDir: "models",
		DataDir:   "data",
		AudioDir:  filepath.Join("audio", "correct"),
		Models: ModelFiles{
			Spelling:        "spelling.model.json",
			Handwriting:     "handwriting.model.json",
			Phono:           "phonospeech.model.json",
			Arithmetic:      "arithmetic.model.json",
			NumberSense:     "numberunderstanding.model.json",
			Tracing:         "lettertracing.model.json",
			LetterConfusion: "letterconfusion.model.json",
		},
		Data: DataFiles{
			SpellingItems:   "spellingfrontend_test.csv",
			SpellingKey:     "spelling_audio_dataset.csv",
			NumberQuestions: "number_understanding_dataset_10k.csv",
			PhonoQuestions:  "dyslexia_training_dataset.csv",
		},
		Modalities:          slices.Clone(AllModalities),
		HandwritingMaxFiles: 3,
	}
}

// Load builds a Config from defaults, then the YAML file at path (if
// path is non-empty), then the environment.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", filepath.Base(path), err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	err := cfg.applyEnv()
	return cfg, err
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"EARLYEDGE_ADDR":         &c.Server.Addr,
		"EARLYEDGE_MODELS_DIR":   &c.ModelsDir,
		"EARLYEDGE_DATA_DIR":     &c.DataDir,
		"EARLYEDGE_AUDIO_DIR":    &c.AudioDir,
		"EARLYEDGE_ONNX_LIBRARY": &c.ONNXLibrary,
	}
	for k, dst := range str {
		if v := os.Getenv(k); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("EARLYEDGE_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("EARLYEDGE_MODALITIES"); v != "" {
		c.Modalities = splitList(v)
	}

	durations := map[string]*time.Duration{
		"EARLYEDGE_READ_TIMEOUT":     &c.Server.ReadTimeout,
		"EARLYEDGE_WRITE_TIMEOUT":    &c.Server.WriteTimeout,
		"EARLYEDGE_SHUTDOWN_TIMEOUT": &c.Server.ShutdownTimeout,
	}
	for k, dst := range durations {
		if v := os.Getenv(k); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", k, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv("EARLYEDGE_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("EARLYEDGE_MAX_UPLOAD_BYTES: %w", err)
		}
		c.Server.MaxUploadBytes = n
	}
	if v := os.Getenv("EARLYEDGE_HANDWRITING_MAX_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("EARLYEDGE_HANDWRITING_MAX_FILES: %w", err)
		}
		c.HandwritingMaxFiles = n
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the configuration for values the service cannot run
// with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		errs = append(errs, errors.New("server timeouts must be positive"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max upload size must be positive"))
	}
	if c.HandwritingMaxFiles < 1 {
		errs = append(errs, fmt.Errorf("handwriting max files must be at least 1, got %d", c.HandwritingMaxFiles))
	}
	if len(c.Modalities) == 0 {
		errs = append(errs, errors.New("at least one modality must be enabled"))
	}
	for _, m := range c.Modalities {
		if !slices.Contains(AllModalities, m) {
			errs = append(errs, fmt.Errorf("unknown modality %q (known: %s)", m, strings.Join(AllModalities, ", ")))
		}
	}
	return errors.Join(errs...)
}

// Enabled reports whether modality m is selected.
func (c Config) Enabled(m string) bool {
	return slices.Contains(c.Modalities, m)
}

// ModelPath resolves the artifact file for a modality.
func (c Config) ModelPath(file string) string {
	return resolve(c.ModelsDir, file)
}

// DataPath resolves a dataset file.
func (c Config) DataPath(file string) string {
	return resolve(c.DataDir, file)
}

// ModelFile returns the configured artifact file name for modality m.
func (c Config) ModelFile(m string) string {
	switch m {
	case Spelling:
		return c.Models.Spelling
	case Handwriting:
		return c.Models.Handwriting
	case Phono:
		return c.Models.Phono
	case Arithmetic:
		return c.Models.Arithmetic
	case NumberSense:
		return c.Models.NumberSense
	case Tracing:
		return c.Models.Tracing
	case LetterConfusion:
		return c.Models.LetterConfusion
	}
	return ""
}

func resolve(dir, file string) string {
	if file == "" || filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dir, file)
}
