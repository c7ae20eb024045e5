package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/prjemian/flyscan/logger"
)

// Duration wraps time.Duration with YAML decoding from strings like "50ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}

	*d = Duration(parsed)

	return nil
}

// Config is the demo CLI configuration.
type Config struct {
	Settings SettingsConfig `yaml:"settings"`
	Scan     ScanConfig     `yaml:"scan"`
	Motor    MotorConfig    `yaml:"motor"`
	Detector DetectorConfig `yaml:"detector"`
	Storage  StorageConfig  `yaml:"storage"`
}

// SettingsConfig holds global application settings.
type SettingsConfig struct {
	LogLevel string `yaml:"logLevel"`
}

// ScanConfig holds the fly-scan acquisition parameters.
type ScanConfig struct {
	PreStart       float64  `yaml:"preStart"`
	StartPosition  float64  `yaml:"startPosition"`
	FinishPosition float64  `yaml:"finishPosition"`
	NumSpins       int      `yaml:"numSpins"`
	MaxFrames      int      `yaml:"maxFrames"`
	PollInterval   Duration `yaml:"pollInterval"`
	StreamName     string   `yaml:"streamName"`
}

// MotorConfig holds the simulated motor parameters.
type MotorConfig struct {
	InitialPosition float64 `yaml:"initialPosition"`
	Velocity        float64 `yaml:"velocity"`
}

// DetectorConfig holds the simulated detector parameters.
type DetectorConfig struct {
	Name          string   `yaml:"name"`
	DataDirectory string   `yaml:"dataDirectory"`
	FramePeriod   Duration `yaml:"framePeriod"`
	WriteLatency  Duration `yaml:"writeLatency"`
}

// StorageConfig holds the run database settings.
type StorageConfig struct {
	DatabasePath string `yaml:"databasePath"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{LogLevel: "info"},
		Scan: ScanConfig{
			PreStart:       -0.5,
			StartPosition:  -20,
			FinishPosition: 20,
			NumSpins:       1,
			MaxFrames:      10000,
			PollInterval:   Duration(50 * time.Millisecond),
			StreamName:     "spin_flyer_stream",
		},
		Motor: MotorConfig{
			InitialPosition: 0,
			Velocity:        100,
		},
		Detector: DetectorConfig{
			Name:          "simdet",
			DataDirectory: os.TempDir(),
			FramePeriod:   Duration(time.Millisecond),
			WriteLatency:  Duration(20 * time.Millisecond),
		},
		Storage: StorageConfig{
			DatabasePath: "flyscan_runs.db",
		},
	}
}

// LoadConfig reads a YAML configuration file, applying defaults for any
// omitted values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.Scan.NumSpins < 1 {
		return fmt.Errorf("scan.numSpins should be at least 1, got %d", c.Scan.NumSpins)
	}
	if c.Motor.Velocity <= 0 {
		return fmt.Errorf("motor.velocity should be positive, got %v", c.Motor.Velocity)
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.databasePath cannot be empty")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// LogLevel parses the configured log level name.
func (c *Config) LogLevel() (logger.Level, error) {
	switch c.Settings.LogLevel {
	case "debug":
		return logger.DebugLevel, nil
	case "", "info":
		return logger.InfoLevel, nil
	case "warn":
		return logger.WarnLevel, nil
	case "error":
		return logger.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.Settings.LogLevel)
	}
}
