package daemon

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/creasty/defaults"
	"github.com/goccy/go-yaml"
	"github.com/icinga/icinga-tagfilter/internal"
	icingadbConfig "github.com/icinga/icingadb/pkg/config"
	"github.com/icinga/icingadb/pkg/logging"
	"github.com/jessevdk/go-flags"
)

const (
	ExitSuccess = 0
	ExitFailure = 1
)

// EnvPrefix is the prefix of all environment variables overriding the config file, e.g. ICINGA_TAGFILTER_WORKERS.
const EnvPrefix = "ICINGA_TAGFILTER"

type ConfigFile struct {
	// Definitions is the path of a YAML file with filter definitions.
	Definitions string `yaml:"definitions"`
	// Workers limits the number of goroutines matching elements concurrently.
	Workers int `yaml:"workers" default:"4"`
	// RefreshInterval is the interval of database refreshes in follow mode.
	RefreshInterval time.Duration `yaml:"refresh-interval" default:"1m"`
	// Database is optional, definitions are additionally read from it if a host is configured.
	Database icingadbConfig.Database `yaml:"database"`
	Logging  icingadbConfig.Logging  `yaml:"logging"`
}

// SetDefaults implements the defaults.Setter interface.
func (c *ConfigFile) SetDefaults() {
	if defaults.CanUpdate(c.Definitions) {
		c.Definitions = internal.SysConfDir + "/icinga-tagfilter/definitions.yml"
	}
}

// DatabaseEnabled returns true if definitions are to be loaded from a database.
func (c *ConfigFile) DatabaseEnabled() bool {
	return c.Database.Host != ""
}

// Validate checks the entire configuration on startup.
func (c *ConfigFile) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.RefreshInterval <= 0 {
		return errors.New("refresh-interval must be positive")
	}

	if c.Definitions == "" && !c.DatabaseEnabled() {
		return errors.New("neither a definitions file nor a database is configured")
	}

	if c.DatabaseEnabled() {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}

	if c.Logging.Output == "" {
		c.Logging.Output = logging.CONSOLE
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	return nil
}

// Assert interface compliance.
var _ defaults.Setter = (*ConfigFile)(nil)

// Flags defines the CLI flags supported by icinga-tagfilter.
type Flags struct {
	// Version decides whether to just print the version and exit.
	Version bool `long:"version" description:"print version and exit"`
	// Config is the path to the config file.
	Config string `short:"c" long:"config" description:"path to config file"`
	// Follow keeps the process running, refreshing the definitions and matching the elements periodically.
	Follow bool `short:"f" long:"follow" description:"refresh definitions and match elements every refresh-interval"`

	Args struct {
		Elements []string `positional-arg-name:"ELEMENTS" description:"YAML files with the elements to match"`
	} `positional-args:"yes"`
}

// ParseFlags parses the given command line arguments.
//
// Returns an error of type *flags.Error with flags.ErrHelp if help was requested.
func ParseFlags(args []string) (*Flags, error) {
	f := &Flags{Config: internal.SysConfDir + "/icinga-tagfilter/config.yml"}
	if _, err := flags.NewParser(f, flags.Default).ParseArgs(args); err != nil {
		return nil, err
	}

	return f, nil
}

// LoadConfig builds the configuration from the defaults, the given YAML file and environment overrides.
//
// A missing config file is not an error if its path is empty. The result is validated.
func LoadConfig(path string, environ []string) (*ConfigFile, error) {
	c := new(ConfigFile)
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("cannot apply config defaults: %w", err)
	}

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("cannot open config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := yaml.NewDecoder(f, yaml.DisallowUnknownField()).Decode(c); err != nil {
			return nil, fmt.Errorf("cannot parse config file %q: %w", path, err)
		}
	}

	if err := PopulateFromYamlEnvironment(EnvPrefix, c, environ); err != nil {
		return nil, fmt.Errorf("cannot apply environment variables: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return c, nil
}
