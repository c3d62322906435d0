// Package config holds sergey's configuration model.
//
// Values come from, in increasing precedence: built-in defaults, an optional
// sergey.yaml file, and command line flags or SERGEY_* environment variables.
// Load handles the first two; the CLI merges the third through Apply.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sergey/internal/foundation/errors"
)

// DefaultFile is the configuration file looked up when none is given.
const DefaultFile = "sergey.yaml"

// Config is the complete configuration of one sergey run.
type Config struct {
	// Root is the source tree. Imports, Content and Output are relative to it.
	Root        string   `yaml:"root"`
	Imports     string   `yaml:"imports"`
	Content     string   `yaml:"content"`
	Output      string   `yaml:"output"`
	ActiveClass string   `yaml:"active_class"`
	Exclude     []string `yaml:"exclude,omitempty"`
	Concurrency int      `yaml:"concurrency"`
	MaxDepth    int      `yaml:"max_depth"`
	Markdown    Markdown `yaml:"markdown"`
	Serve       Serve    `yaml:"serve"`
	Logging     Logging  `yaml:"logging"`
}

// Markdown toggles renderer extensions.
type Markdown struct {
	HardWraps bool `yaml:"hard_wraps"`
	XHTML     bool `yaml:"xhtml"`
}

// Serve configures watch mode.
type Serve struct {
	Port       int  `yaml:"port"`
	LiveReload bool `yaml:"live_reload"`
	Metrics    bool `yaml:"metrics"`
}

// Logging configures the process logger.
type Logging struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Root:        "./",
		Imports:     "_imports",
		Content:     "_imports",
		Output:      "public",
		ActiveClass: "active",
		Concurrency: runtime.NumCPU(),
		MaxDepth:    64,
		Serve: Serve{
			Port:       8080,
			LiveReload: true,
			Metrics:    true,
		},
		Logging: Logging{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path. A missing
// file is only an error when required is set; ${VAR} references in the file
// are expanded from the environment.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return nil, errors.NotFoundError("configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Build()
	}

	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			WithContext("path", path).
			Build()
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
	c.ActiveClass = strings.TrimSpace(c.ActiveClass)

	excl := c.Exclude[:0]
	for _, e := range c.Exclude {
		if e = strings.TrimSpace(e); e != "" {
			excl = append(excl, e)
		}
	}
	c.Exclude = excl
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	invalid := func(field string, value any, msg string) error {
		return errors.ValidationError(msg).
			WithContext("field", field).
			WithContext("value", value).
			Build()
	}

	switch {
	case strings.TrimSpace(c.Root) == "":
		return invalid("root", c.Root, "root must not be empty")
	case strings.TrimSpace(c.Imports) == "":
		return invalid("imports", c.Imports, "imports folder must not be empty")
	case strings.TrimSpace(c.Content) == "":
		return invalid("content", c.Content, "content folder must not be empty")
	case strings.TrimSpace(c.Output) == "":
		return invalid("output", c.Output, "output folder must not be empty")
	case c.ActiveClass == "" || strings.ContainsAny(c.ActiveClass, " \t\r\n\"<>"):
		return invalid("active_class", c.ActiveClass, "active class must be a single class name")
	case c.Concurrency < 1:
		return invalid("concurrency", c.Concurrency, "concurrency must be at least 1")
	case c.MaxDepth < 1:
		return invalid("max_depth", c.MaxDepth, "max depth must be at least 1")
	case c.Serve.Port < 1 || c.Serve.Port > 65535:
		return invalid("serve.port", c.Serve.Port, "port must be between 1 and 65535")
	}
	return nil
}

// Overrides carries the values set on the command line or through the
// environment. Zero values leave the configuration untouched.
type Overrides struct {
	Root        string
	Imports     string
	Content     string
	Output      string
	ActiveClass string
	Exclude     []string
	Concurrency int
	MaxDepth    int
	Port        int
	LogLevel    string
}

// Apply merges o into c and validates the result.
func (c *Config) Apply(o Overrides) error {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Root, o.Root)
	set(&c.Imports, o.Imports)
	set(&c.Content, o.Content)
	set(&c.Output, o.Output)
	set(&c.ActiveClass, o.ActiveClass)
	if len(o.Exclude) > 0 {
		c.Exclude = append([]string(nil), o.Exclude...)
	}
	if o.Concurrency > 0 {
		c.Concurrency = o.Concurrency
	}
	if o.MaxDepth > 0 {
		c.MaxDepth = o.MaxDepth
	}
	if o.Port > 0 {
		c.Serve.Port = o.Port
	}
	if o.LogLevel != "" {
		c.Logging.Level = LogLevel(o.LogLevel)
	}
	c.normalize()
	return c.Validate()
}

// Path joins p onto Root unless it is absolute.
func (c *Config) Path(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(c.Root, p)
}

// ImportsDir is the resolved imports folder.
func (c *Config) ImportsDir() string { return c.Path(c.Imports) }

// ContentDir is the resolved content folder.
func (c *Config) ContentDir() string { return c.Path(c.Content) }

// OutputDir is the resolved output folder.
func (c *Config) OutputDir() string { return c.Path(c.Output) }

// Addr is the preview server listen address.
func (c *Config) Addr() string { return fmt.Sprintf(":%d", c.Serve.Port) }
