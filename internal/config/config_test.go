package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestValidate_Defaults verifies an empty config validates to usable defaults.
func TestValidate_Defaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	require.NoError(t, Validate(cfg))

	require.Equal(t, TransportInProc, cfg.BusTransport)
	require.Equal(t, DefaultMetricsAddress, cfg.MetricsAddress)
	require.Equal(t, DefaultPendingFilename, cfg.PendingFile)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
	require.Equal(t, DefaultRingInterval, cfg.RingInterval)
	require.InEpsilon(t, DefaultSlideThreshold, cfg.SlideThreshold, 1e-9)
	require.InEpsilon(t, float64(DefaultTrackWidth), cfg.TrackWidth, 1e-9)
}

// TestValidate_Errors covers the rejection branches.
func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))
	require.Error(t, Validate(&Config{BusTransport: "carrier-pigeon"}))
	require.Error(t, Validate(&Config{BusTransport: TransportRedis}))
	require.Error(t, Validate(&Config{BusTransport: TransportRedis, RedisAddress: "not a socket"}))
	require.Error(t, Validate(&Config{KafkaBrokers: "localhost:9092"}))
	require.Error(t, Validate(&Config{ConsumerURL: "::bad::"}))
	require.Error(t, Validate(&Config{SlideThreshold: 1.5}))
}

// TestSaveLoad_Roundtrip verifies YAML persistence keeps all fields.
func TestSaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	saved := &Config{
		BusTransport:   TransportRedis,
		RedisAddress:   "127.0.0.1:6379",
		KafkaBrokers:   "127.0.0.1:9092",
		KafkaTopic:     "orders.events",
		KafkaGroup:     "order-siren",
		ConsumerURL:    "http://127.0.0.1:8080",
		MetricsAddress: ":9100",
		SoundClip:      "/usr/share/sounds/siren.ogg",
		RingInterval:   3 * time.Second,
		SlideThreshold: 0.5,
		TrackWidth:     320,
		Timeout:        2 * time.Second,
		LogLevel:       "debug",
	}

	require.NoError(t, Save(path, saved))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, saved, loaded)
}

// TestLoad_MissingFile asserts a readable error when settings are absent.
func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
