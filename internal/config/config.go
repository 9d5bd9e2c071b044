package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the config directory.
const FileName = "coursecal.cfg.json"

// CalibrationConfig holds the per-course calibration settings.
type CalibrationConfig struct {
	Complexity int               `json:"complexity" mapstructure:"complexity"`
	Epsilon    float64           `json:"epsilon" mapstructure:"epsilon"`
	Elevation  string            `json:"elevation" mapstructure:"elevation"`
	Proxies    map[string]string `json:"proxies" mapstructure:"proxies"`
	Aliases    map[string]string `json:"aliases" mapstructure:"aliases"`
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the course storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// FeedConfig holds the pose feed connection settings
type FeedConfig struct {
	URL            string        `json:"url" mapstructure:"url"`
	Secret         string        `json:"secret" mapstructure:"secret"`
	ReconnectDelay time.Duration `json:"reconnectDelay" mapstructure:"reconnectDelay"`
}

// InfluxConfig holds calibration telemetry settings
type InfluxConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Protocol   string `json:"protocol" mapstructure:"protocol"`
	Host       string `json:"host" mapstructure:"host"`
	Port       string `json:"port" mapstructure:"port"`
	Token      string `json:"token" mapstructure:"token"`
	Org        string `json:"org" mapstructure:"org"`
	Bucket     string `json:"bucket" mapstructure:"bucket"`
	BackupPath string `json:"backupPath" mapstructure:"backupPath"`
}

// URL returns the InfluxDB server address.
func (c InfluxConfig) URL() string {
	return fmt.Sprintf("%s://%s:%s", c.Protocol, c.Host, c.Port)
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// LoadDefaults sets default values without reading a config file.
func LoadDefaults() {
	setDefaults()
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./coursecal-logs")

	viper.SetDefault("calibration.complexity", 4)
	viper.SetDefault("calibration.epsilon", 0.01)
	viper.SetDefault("calibration.elevation", "flatten")
	viper.SetDefault("calibration.proxies", map[string]string{})
	viper.SetDefault("calibration.aliases", map[string]string{})

	viper.SetDefault("feed.url", "ws://localhost:7070/feed")
	viper.SetDefault("feed.secret", "")
	viper.SetDefault("feed.reconnectDelay", "2s")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "coursecal")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./courses")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./coursecal.db")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "coursecal")
	viper.SetDefault("influx.bucket", "calibration")
	viper.SetDefault("influx.backupPath", "./coursecal-logs/influx_backup.log.gz")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "coursecal")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetCalibrationConfig returns the calibration settings and validates them.
// viper lowercases map keys, so alias names reach the classifier lowercased.
func GetCalibrationConfig() (CalibrationConfig, error) {
	cfg := CalibrationConfig{
		Complexity: viper.GetInt("calibration.complexity"),
		Epsilon:    viper.GetFloat64("calibration.epsilon"),
		Elevation:  viper.GetString("calibration.elevation"),
		Proxies:    viper.GetStringMapString("calibration.proxies"),
		Aliases:    viper.GetStringMapString("calibration.aliases"),
	}
	if cfg.Complexity < 1 {
		return cfg, fmt.Errorf("calibration.complexity must be at least 1, got %d", cfg.Complexity)
	}
	if cfg.Epsilon < 0 {
		return cfg, fmt.Errorf("calibration.epsilon must not be negative, got %v", cfg.Epsilon)
	}
	return cfg, nil
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetFeedConfig returns the pose feed settings.
func GetFeedConfig() FeedConfig {
	return FeedConfig{
		URL:            viper.GetString("feed.url"),
		Secret:         viper.GetString("feed.secret"),
		ReconnectDelay: viper.GetDuration("feed.reconnectDelay"),
	}
}

// GetInfluxConfig returns the telemetry settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:    viper.GetBool("influx.enabled"),
		Protocol:   viper.GetString("influx.protocol"),
		Host:       viper.GetString("influx.host"),
		Port:       viper.GetString("influx.port"),
		Token:      viper.GetString("influx.token"),
		Org:        viper.GetString("influx.org"),
		Bucket:     viper.GetString("influx.bucket"),
		BackupPath: viper.GetString("influx.backupPath"),
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}
