package config

import (
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/gapa64/async-web-monitoring/internal/domain/target"
	"github.com/gapa64/async-web-monitoring/internal/obs"
	pginfra "github.com/gapa64/async-web-monitoring/internal/repository/postgres"
)

// Target is one monitoring entry as it appears in the config file.
type Target struct {
	URL            string `mapstructure:"url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Pattern        string `mapstructure:"pattern"`
}

type DB struct {
	DSN               string        `mapstructure:"dsn"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
	QueryTimeout      time.Duration `mapstructure:"query_timeout"`
}

func (d DB) AsPoolConfig() pginfra.Config {
	return pginfra.Config{
		URL:               d.DSN,
		MaxConns:          d.MaxConns,
		MinConns:          d.MinConns,
		MaxConnLifetime:   d.MaxConnLifetime,
		MaxConnIdleTime:   d.MaxConnIdleTime,
		HealthCheckPeriod: d.HealthCheckPeriod,
		QueryTimeout:      d.QueryTimeout,
	}
}

type HTTP struct {
	DefaultTimeout  time.Duration `mapstructure:"default_timeout"`
	UserAgent       string        `mapstructure:"user_agent"`
	FollowRedirects bool          `mapstructure:"follow_redirects"`
	VerifyTLS       bool          `mapstructure:"verify_tls"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

type Monitor struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (l Log) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{Level: l.Level, Pretty: l.Pretty, App: "webmon"}
}

type OTEL struct {
	Enable      bool    `mapstructure:"enable"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"otlp_endpoint"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

func (o OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      o.Enable,
		ServiceName: o.ServiceName,
		Endpoint:    o.Endpoint,
		SampleRatio: o.SampleRatio,
	}
}

type Config struct {
	DB      DB       `mapstructure:"db"`
	HTTP    HTTP     `mapstructure:"http"`
	Monitor Monitor  `mapstructure:"monitor"`
	Server  Server   `mapstructure:"server"`
	Log     Log      `mapstructure:"log"`
	OTEL    OTEL     `mapstructure:"otel"`
	Targets []Target `mapstructure:"targets"`
}

func (t Target) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.URL, validation.Required, is.URL),
		validation.Field(&t.TimeoutSeconds, validation.Min(1)),
		validation.Field(&t.Pattern, validation.By(validPattern)),
	)
}

func validPattern(value interface{}) error {
	p, _ := value.(string)
	if p == "" {
		return nil
	}
	if _, err := regexp.Compile(p); err != nil {
		return validation.NewError("validation_invalid_pattern", err.Error())
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Targets, validation.Required),
	); err != nil {
		return err
	}
	for i, t := range c.Targets {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("target %d (%s): %w", i, t.URL, err)
		}
	}
	return nil
}

// CompileTargets turns the config entries into immutable targets with
// compiled patterns. Patterns match across newlines, so an expression can
// span the whole body.
func (c *Config) CompileTargets() ([]target.Target, error) {
	out := make([]target.Target, 0, len(c.Targets))
	for i, t := range c.Targets {
		var re *regexp.Regexp
		if t.Pattern != "" {
			var err error
			re, err = regexp.Compile("(?s)" + t.Pattern)
			if err != nil {
				return nil, fmt.Errorf("target %d (%s): compile pattern: %w", i, t.URL, err)
			}
		}
		timeout := time.Duration(t.TimeoutSeconds) * time.Second
		if timeout <= 0 {
			timeout = c.HTTP.DefaultTimeout
		}
		out = append(out, target.Target{URL: t.URL, Timeout: timeout, Pattern: re})
	}
	return out, nil
}
