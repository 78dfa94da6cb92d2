package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/imamik/emc/internal/util/netutil"
)

// Environment variables holding secrets.
const (
	EnvHCloudToken     = "HCLOUD_TOKEN"
	EnvCloudflareToken = "CLOUDFLARE_API_TOKEN"
	EnvS3AccessKey     = "EMC_S3_ACCESS_KEY"
	EnvS3SecretKey     = "EMC_S3_SECRET_KEY"
)

// Load reads the config file at path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadFile reads and parses the configuration from a YAML file.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML bytes, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			stringToPortHook,
		),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(rawConfig); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// stringToPortHook lets ports be written as "tcp/22" in YAML.
func stringToPortHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf(netutil.Port{}) {
		return data, nil
	}
	p, err := netutil.ParsePort(data.(string))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"protocol": p.Protocol, "port": p.Number}, nil
}

func (c *Config) applyEnv() {
	c.HCloudToken = os.Getenv(EnvHCloudToken)
	c.CloudflareToken = os.Getenv(EnvCloudflareToken)
	c.Backup.AccessKey = os.Getenv(EnvS3AccessKey)
	c.Backup.SecretKey = os.Getenv(EnvS3SecretKey)
}
