package config

import (
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
	"github.com/yusing/envinject/internal/common"
	"github.com/yusing/envinject/internal/gperr"
	"github.com/yusing/envinject/internal/inject"
	"github.com/yusing/goutils/env"
)

type Config struct {
	Listen string `json:"listen" yaml:"listen" validate:"required"`
	// exactly one of Upstream and Root
	Upstream string `json:"upstream" yaml:"upstream" validate:"omitempty,url"`
	Root     string `json:"root" yaml:"root" validate:"omitempty,dir"`

	HealthPath      string        `json:"health_path" yaml:"health_path" validate:"omitempty,startswith=/"`
	StatsPath       string        `json:"stats_path" yaml:"stats_path" validate:"omitempty,startswith=/"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" validate:"gte=0"`

	Inject inject.Config `json:"inject" yaml:"inject"`
}

var (
	ErrNoBackend        = gperr.New("either upstream or root is required")
	ErrConflictBackends = gperr.New("upstream and root are mutually exclusive")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func DefaultConfig() *Config {
	return &Config{
		Listen:          common.ListenAddrDefault,
		HealthPath:      common.HealthPathDefault,
		ShutdownTimeout: common.ShutdownTimeoutDefault,
		Inject:          inject.DefaultConfig(),
	}
}

// Load reads the YAML file at path on top of the defaults, applies
// environment overrides and validates the result.
//
// A missing file is only an error when optional is false.
func Load(path string, optional bool) (*Config, gperr.Error) {
	cfg, err := parse(path, optional)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadInject is like [Load] but only validates the inject section,
// for callers that do not serve traffic.
func LoadInject(path string, optional bool) (inject.Config, gperr.Error) {
	cfg, err := parse(path, optional)
	if err != nil {
		return inject.Config{}, err
	}
	if errs := validateStruct(&cfg.Inject, gperr.NewBuilder("invalid inject config")); errs.HasError() {
		return inject.Config{}, errs.Error()
	}
	return cfg.Inject, nil
}

func parse(path string, optional bool) (*Config, gperr.Error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, gperr.Wrap(err, "invalid yaml").Subject(path)
			}
		case optional && errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("config file not found, using defaults")
		default:
			return nil, gperr.Wrap(err).Subject(path)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overrides file values with the environment, the way the edge
// platform hands per-deployment settings to the hook.
func (cfg *Config) applyEnv() {
	cfg.Listen = env.GetEnvString("LISTEN", cfg.Listen)
	cfg.Upstream = env.GetEnvString("UPSTREAM", cfg.Upstream)
	cfg.Root = env.GetEnvString("ROOT", cfg.Root)
	cfg.HealthPath = env.GetEnvString("HEALTH_PATH", cfg.HealthPath)
	cfg.StatsPath = env.GetEnvString("STATS_PATH", cfg.StatsPath)
	cfg.ShutdownTimeout = env.GetEnvDuation("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)

	cfg.Inject.URL = env.GetEnvString(common.EnvSupabaseURL, cfg.Inject.URL)
	cfg.Inject.AnonKey = env.GetEnvString(common.EnvSupabaseAnonKey, cfg.Inject.AnonKey)
	cfg.Inject.Marker = env.GetEnvString("INJECT_MARKER", cfg.Inject.Marker)
	cfg.Inject.MaxBodySize = common.GetEnvInt64("INJECT_MAX_BODY_SIZE", cfg.Inject.MaxBodySize)
}

func (cfg *Config) Validate() gperr.Error {
	errs := validateStruct(cfg, gperr.NewBuilder("invalid config"))
	switch {
	case cfg.Upstream == "" && cfg.Root == "":
		errs.Add(ErrNoBackend)
	case cfg.Upstream != "" && cfg.Root != "":
		errs.Add(ErrConflictBackends)
	}
	return errs.Error()
}

func validateStruct(v any, errs *gperr.Builder) *gperr.Builder {
	err := validate.Struct(v)
	if err == nil {
		return errs
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Add(err)
	}
	for _, fe := range verrs {
		// namespace is "Config.inject.supabase_url", drop the type name
		_, field, _ := strings.Cut(fe.Namespace(), ".")
		errs.AddSubject(fieldError(fe), field)
	}
	return errs
}

func fieldError(fe validator.FieldError) gperr.Error {
	if fe.Param() != "" {
		return gperr.Errorf("failed %q validation: %s", fe.Tag(), fe.Param())
	}
	return gperr.Errorf("failed %q validation", fe.Tag())
}

// Mode describes what the service sits in front of.
func (cfg *Config) Mode() string {
	if cfg.Upstream != "" {
		return "upstream"
	}
	return "root"
}
