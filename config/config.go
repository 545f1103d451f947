// Package config loads and validates the pipeline's configuration:
// section geometry, margin times and file-size budgets, and derives the
// per-section ring geometry the buffer manager depends on.
package config

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/fathomrail/daspipe/buffer"
	"github.com/fathomrail/daspipe/detect"
	"github.com/fathomrail/daspipe/section"
	"github.com/fathomrail/daspipe/signal"
)

// Limits holds the default rejection thresholds from spec §4.F. They are
// exported so a deployment can tighten them, but never loosened past
// what the buffer geometry can support.
type Limits struct {
	SectionLimit         int     `mapstructure:"section_limit" validate:"gt=0"`
	SectionIndexLimit    int     `mapstructure:"section_index_limit" validate:"gt=0"`
	TotalTimeMaxLimit    float64 `mapstructure:"total_time_max_limit" validate:"gt=0"`
	BufferSizeLowerLimit int     `mapstructure:"buffer_size_lower_limit" validate:"gt=0"`
}

// DefaultLimits returns the spec's documented defaults.
func DefaultLimits() Limits {
	return Limits{
		SectionLimit:         10,
		SectionIndexLimit:    1000,
		TotalTimeMaxLimit:    300,
		BufferSizeLowerLimit: 4,
	}
}

// BatchShape is the (rows, cols) shape selected by ENVIRONMENT.
type BatchShape struct {
	Rows int
	Cols int
}

var presetBatchShapes = map[string]BatchShape{
	"dev":  {Rows: 1024, Cols: 2478},
	"prod": {Rows: 4096, Cols: 5625},
}

// Config is the fully decoded, not-yet-validated pipeline configuration.
type Config struct {
	Environment string           `mapstructure:"environment" validate:"oneof=dev prod"`
	LogLevel    string           `mapstructure:"log_level" validate:"oneof=debug info"`
	OutputRoot  string           `mapstructure:"output_root" validate:"required"`

	Sections []section.Section `mapstructure:"sections" validate:"required,dive"`

	BytesPerPixel   float64   `mapstructure:"bytes_per_pixel" validate:"gt=0"`
	FileSizeMBList  []float64 `mapstructure:"file_size_mb_list" validate:"required,dive,gt=0"`
	StartMarginTime float64   `mapstructure:"start_margin_time" validate:"gte=0"`
	EndMarginTime   float64   `mapstructure:"end_margin_time" validate:"gte=0"`
	TotalTimeMax    float64   `mapstructure:"total_time_max" validate:"gt=0"`

	SignalN     int       `mapstructure:"signal_n" validate:"gte=1"`
	SignalFs    float64   `mapstructure:"signal_fs" validate:"gt=0"`
	FilterOrder int       `mapstructure:"filter_order" validate:"gte=1"`
	FilterWn    []float64 `mapstructure:"filter_wn" validate:"required"`
	FilterBType string    `mapstructure:"filter_btype" validate:"oneof=lowpass highpass bandpass bandstop"`

	DetectionMode      int     `mapstructure:"detection_mode" validate:"oneof=0 1"`
	DetectionThreshold float64 `mapstructure:"detection_threshold"`
	SpatialWindow      int     `mapstructure:"spatial_window" validate:"gte=0"`
	ValidityPercentage float64 `mapstructure:"validity_percentage" validate:"gt=0,lte=1"`

	MaxFiles    int     `mapstructure:"max_files" validate:"gte=1"`
	WaitingTime float64 `mapstructure:"waiting_time" validate:"gte=0"`

	SaveBinary bool `mapstructure:"save_binary"`
	Save       bool `mapstructure:"save"`
	Plot       bool `mapstructure:"plot"`

	Limits Limits `mapstructure:"limits" validate:"-"`
}

// Load reads configuration from the environment and an optional file at
// path (empty means environment and defaults only), the way the original
// tool's dotenv-based config loading worked, but through Viper so both a
// config file and env vars ("DASPIPE_..." prefix) can supply values.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DASPIPE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	applyDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("%w: reading %s: %v", ErrConfigFile, path, err)
		}
	}

	if env := os.Getenv("ENVIRONMENT"); env != "" {
		v.Set("environment", env)
	}
	if level := os.Getenv("LEVEL"); level != "" {
		v.Set("log_level", level)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	cfg.Limits = DefaultLimits()

	return cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("environment", "dev")
	v.SetDefault("log_level", "info")
	v.SetDefault("output_root", "./output")
	v.SetDefault("bytes_per_pixel", 1.984)
	v.SetDefault("start_margin_time", 10.0)
	v.SetDefault("end_margin_time", 20.0)
	v.SetDefault("total_time_max", 60.0)
	v.SetDefault("signal_n", 5)
	v.SetDefault("signal_fs", 1000.0)
	v.SetDefault("filter_order", 4)
	v.SetDefault("filter_wn", []float64{0.8})
	v.SetDefault("filter_btype", "highpass")
	v.SetDefault("detection_mode", 0)
	v.SetDefault("detection_threshold", 3.0)
	v.SetDefault("spatial_window", 2)
	v.SetDefault("validity_percentage", 0.5)
	v.SetDefault("max_files", 3)
	v.SetDefault("waiting_time", 0.05)
	v.SetDefault("save_binary", true)
}

// BatchShapeFor returns the configured environment's fixed batch shape.
func (c Config) BatchShapeFor() (BatchShape, error) {
	shape, ok := presetBatchShapes[c.Environment]
	if !ok {
		return BatchShape{}, fmt.Errorf("%w: unknown environment %q", ErrInvalidEnvironment, c.Environment)
	}
	return shape, nil
}

// SignalParams builds the preprocessing parameters implied by the
// config's signal section.
func (c Config) SignalParams() signal.Params {
	return signal.Params{
		N:      c.SignalN,
		Fs:     c.SignalFs,
		FOrder: c.FilterOrder,
		Wn:     c.FilterWn,
		BType:  filterTypeFromString(c.FilterBType),
	}
}

func filterTypeFromString(s string) signal.FilterType {
	switch s {
	case "lowpass":
		return signal.Lowpass
	case "highpass":
		return signal.Highpass
	case "bandpass":
		return signal.Bandpass
	case "bandstop":
		return signal.Bandstop
	default:
		return signal.Lowpass
	}
}

// DetectParams builds the detector parameters implied by the config's
// detection section.
func (c Config) DetectParams() detect.Params {
	mode := detect.ModeRunLength
	if c.DetectionMode == 1 {
		mode = detect.ModeProportion
	}
	return detect.Params{
		Mode:               mode,
		Threshold:          c.DetectionThreshold,
		SpatialWindow:      c.SpatialWindow,
		ValidityPercentage: c.ValidityPercentage,
	}
}

// Dt returns the effective post-preprocessing sample period, N/fs.
func (c Config) Dt() float64 {
	return float64(c.SignalN) / c.SignalFs
}

// Validated holds everything downstream components need after a config
// has passed validation: the section map and the per-section ring
// geometry required by the buffer manager.
type Validated struct {
	Config     Config
	Sections   section.Map
	BatchShape BatchShape
	Buffers    []buffer.SectionParams
}

// fieldValidator is package-level the way the teacher keeps a single
// shared tiledb context alive for the process lifetime — one validator
// instance, reused across Validate calls.
var fieldValidator = validator.New()

// Validate performs struct-level validation (via validator tags) and
// then the cross-field arithmetic checks from spec §4.F that tags alone
// cannot express: section/column limits, file-size-list length, the
// derived file-size ceiling, K_s >= buffer_size_lower_limit, and the
// active/inactive reference bounds.
func Validate(cfg Config) (Validated, error) {
	if err := fieldValidator.Struct(cfg); err != nil {
		return Validated{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	sections, err := section.NewMap(cfg.Sections)
	if err != nil {
		return Validated{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	limits := cfg.Limits
	if limits == (Limits{}) {
		limits = DefaultLimits()
	}

	if sections.Len() > limits.SectionLimit {
		return Validated{}, fmt.Errorf("%w: %d sections exceeds limit %d", ErrInvalidConfig, sections.Len(), limits.SectionLimit)
	}
	for _, s := range sections.All() {
		if s.ColHi >= limits.SectionIndexLimit {
			return Validated{}, fmt.Errorf("%w: section %s upper index %d >= limit %d", ErrInvalidConfig, s.ID, s.ColHi, limits.SectionIndexLimit)
		}
	}
	if cfg.TotalTimeMax > limits.TotalTimeMaxLimit {
		return Validated{}, fmt.Errorf("%w: total_time_max %g exceeds limit %g", ErrInvalidConfig, cfg.TotalTimeMax, limits.TotalTimeMaxLimit)
	}
	if len(cfg.FileSizeMBList) != sections.Len() {
		return Validated{}, fmt.Errorf("%w: file_size_mb_list has %d entries for %d sections", ErrInvalidConfig, len(cfg.FileSizeMBList), sections.Len())
	}

	shape, err := cfg.BatchShapeFor()
	if err != nil {
		return Validated{}, err
	}
	dt := cfg.Dt()

	derivedCeilingMiB := (cfg.TotalTimeMax * cfg.BytesPerPixel * float64(shape.Rows)) / (dt * (1 << 20))

	bufParams := make([]buffer.SectionParams, sections.Len())
	for i, s := range sections.All() {
		fsz := cfg.FileSizeMBList[i]
		if fsz > derivedCeilingMiB {
			return Validated{}, fmt.Errorf("%w: file_size_mb_list[%d]=%g exceeds derived limit %g", ErrInvalidConfig, i, fsz, derivedCeilingMiB)
		}

		bytesPerBatch := cfg.BytesPerPixel * float64(shape.Rows) * float64(s.Width())
		k := int(math.Floor(fsz * (1 << 20) / bytesPerBatch))
		if k < limits.BufferSizeLowerLimit {
			return Validated{}, fmt.Errorf("%w: section %s K_s=%d below lower limit %d", ErrInvalidConfig, s.ID, k, limits.BufferSizeLowerLimit)
		}

		activeRef := int(math.Floor(cfg.StartMarginTime/(float64(shape.Rows)*dt))) + 1
		inactiveRef := k - int(math.Floor(cfg.EndMarginTime/(float64(shape.Rows)*dt))) - 1

		if activeRef < 0 || activeRef >= k {
			return Validated{}, fmt.Errorf("%w: section %s active_ref=%d out of [0,%d)", ErrInvalidConfig, s.ID, activeRef, k)
		}
		if inactiveRef < 0 || inactiveRef >= k {
			return Validated{}, fmt.Errorf("%w: section %s inactive_ref=%d out of [0,%d)", ErrInvalidConfig, s.ID, inactiveRef, k)
		}

		bufParams[i] = buffer.SectionParams{Capacity: k, ActiveRef: activeRef, InactiveRef: inactiveRef}
	}

	return Validated{Config: cfg, Sections: sections, BatchShape: shape, Buffers: bufParams}, nil
}
