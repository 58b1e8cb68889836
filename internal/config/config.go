package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds settings shared by the order-siren binaries.
type Config struct {
	// BusTransport selects the delivery-channel transport: "inproc" or "redis".
	BusTransport string `yaml:"bus_transport"`
	// RedisAddress is the redis host:port for the bus and pending store.
	RedisAddress string `yaml:"redis_addr"`
	// KafkaBrokers is a comma-separated broker list; empty disables ingest.
	KafkaBrokers string `yaml:"kafka_brokers"`
	// KafkaTopic is the topic carrying order events.
	KafkaTopic string `yaml:"kafka_topic"`
	// KafkaGroup is the consumer group id for the ingest reader.
	KafkaGroup string `yaml:"kafka_group"`
	// ConsumerURL is the business-layer webhook base URL; empty means no
	// consumer is attached and decisions are parked as pending.
	ConsumerURL string `yaml:"consumer_url"`
	// MetricsAddress is the listen address for the Prometheus endpoint.
	MetricsAddress string `yaml:"metrics_addr"`
	// PendingFile is the JSON slot for pending decisions when redis is
	// not configured.
	PendingFile string `yaml:"pending_file"`
	// SoundPlayer overrides the platform's default clip player command.
	SoundPlayer string `yaml:"sound_player"`
	// SoundClip is the path to the alert sound file.
	SoundClip string `yaml:"sound_clip"`
	// RingInterval is the pause between feedback cycles.
	RingInterval time.Duration `yaml:"ring_interval"`
	// SlideThreshold is the decision displacement as a fraction of the
	// track half-width, in (0, 1].
	SlideThreshold float64 `yaml:"slide_threshold"`
	// TrackWidth is the slide track width in display units.
	TrackWidth float64 `yaml:"track_width"`
	// Timeout is the duration for network operations.
	Timeout time.Duration `yaml:"timeout"`
	// LogLevel sets the daemon's logging level.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "order-siren-settings.yaml"

	// DefaultPendingFilename is the default filename for the pending
	// decision JSON slot.
	DefaultPendingFilename = "order-siren-pending.json"

	// DefaultMetricsAddress is the default Prometheus listen address.
	DefaultMetricsAddress = ":9091"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 5 * time.Second

	// DefaultRingInterval is the default pause between feedback cycles.
	DefaultRingInterval = 2 * time.Second

	// DefaultSlideThreshold is the default decision displacement fraction.
	DefaultSlideThreshold = 0.6

	// DefaultTrackWidth is the default slide track width.
	DefaultTrackWidth = 300

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// TransportInProc is the in-process bus transport name.
	TransportInProc = "inproc"

	// TransportRedis is the redis bus transport name.
	TransportRedis = "redis"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownTransport is returned for an unrecognised bus transport.
	errUnknownTransport = errors.New("unknown bus transport")
	// errRedisAddressRequired is returned when the redis transport is
	// selected without an address.
	errRedisAddressRequired = errors.New("redis address must be provided for the redis transport")
	// errKafkaTopicRequired is returned when brokers are set without a topic.
	errKafkaTopicRequired = errors.New("kafka topic must be provided when brokers are set")
	// errInvalidThreshold is returned for a slide threshold outside (0, 1].
	errInvalidThreshold = errors.New("slide threshold must be within (0, 1]")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and fills defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.BusTransport == "" {
		cfg.BusTransport = TransportInProc
	}

	switch cfg.BusTransport {
	case TransportInProc:
	case TransportRedis:
		if cfg.RedisAddress == "" {
			return errRedisAddressRequired
		}

		if _, err := net.ResolveTCPAddr("tcp", cfg.RedisAddress); err != nil {
			return fmt.Errorf("invalid redis address: %w", err)
		}
	default:
		return fmt.Errorf("%w: %q", errUnknownTransport, cfg.BusTransport)
	}

	if cfg.KafkaBrokers != "" && cfg.KafkaTopic == "" {
		return errKafkaTopicRequired
	}

	if cfg.ConsumerURL != "" {
		if _, err := url.ParseRequestURI(cfg.ConsumerURL); err != nil {
			return fmt.Errorf("invalid consumer URL: %w", err)
		}
	}

	if cfg.MetricsAddress == "" {
		cfg.MetricsAddress = DefaultMetricsAddress
	}

	if cfg.PendingFile == "" {
		cfg.PendingFile = DefaultPendingFilename
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if cfg.RingInterval <= 0 {
		cfg.RingInterval = DefaultRingInterval
	}

	if cfg.SlideThreshold == 0 {
		cfg.SlideThreshold = DefaultSlideThreshold
	}

	if cfg.SlideThreshold < 0 || cfg.SlideThreshold > 1 {
		return errInvalidThreshold
	}

	if cfg.TrackWidth <= 0 {
		cfg.TrackWidth = DefaultTrackWidth
	}

	return nil
}
