package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/zan8in/fileutil"
	"gopkg.in/yaml.v2"
)

// Config is the squidscan-config.yaml helper implementation
type Config struct {
	ConfigVersion  string   `yaml:"version"`
	Threads        int      `yaml:"threads"`
	DelayMs        int      `yaml:"delay_ms"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
	UserAgent      string   `yaml:"user_agent"`
	ExcludeStatus  []string `yaml:"exclude_status"`
}

const squidscanConfigFilename = "squidscan-config.yaml"
const Version = "1.0.0"

// New reads the configuration at path, creating it with defaults first when
// it does not exist. An empty path means the file under the user config
// directory.
func New(path string) (*Config, error) {
	if path == "" {
		p, err := getConfigFile()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if !fileutil.FileExists(path) {
		if err := WriteConfiguration(path, Default()); err != nil {
			return nil, err
		}
	}
	config, err := ReadConfiguration(path)
	if err != nil {
		return nil, err
	}
	config.fillDefaults()
	return config, nil
}

// Default returns the configuration written on first run.
func Default() *Config {
	exclude := make([]string, len(DefaultExcludeStatus))
	copy(exclude, DefaultExcludeStatus)
	return &Config{
		ConfigVersion:  Version,
		Threads:        DefaultThreads,
		DelayMs:        DefaultDelayMs,
		TimeoutSeconds: DefaultTimeoutSeconds,
		UserAgent:      DefaultUserAgent,
		ExcludeStatus:  exclude,
	}
}

// fillDefaults covers keys missing from hand-edited files.
func (c *Config) fillDefaults() {
	if c.Threads == 0 {
		c.Threads = DefaultThreads
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if len(c.ExcludeStatus) == 0 {
		c.ExcludeStatus = append([]string(nil), DefaultExcludeStatus...)
	}
}

func getConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "could not get home directory")
	}
	configDir := filepath.Join(homeDir, ".config", "squidscan")
	return filepath.Join(configDir, squidscanConfigFilename), nil
}

// ReadConfiguration reads the squidscan configuration file from disk.
func ReadConfiguration(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open config file")
	}
	defer file.Close()

	config := &Config{}
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	return config, nil
}

// WriteConfiguration writes the configuration to disk
func WriteConfiguration(path string, config *Config) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "could not create config directory")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "could not write config file")
}
