package config

import (
	"time"

	"github.com/imamik/emc/internal/util/netutil"
)

// Defaults for a fresh installation.
const (
	DefaultRegion     = "fsn1"
	DefaultServerType = "cx32"
	DefaultImage      = "docker-ce"
	DefaultSSHUser    = "root"
	DefaultDNSServer  = "1.1.1.1:53"
	DefaultGameImage  = "itzg/minecraft-server:latest"
	DefaultGameMemory = "6G"
	DefaultGamePort   = 25565

	DefaultSSHReadyTimeout = 2 * time.Minute
)

// Config is the operator configuration.
type Config struct {
	Region     string         `mapstructure:"region"`
	ServerType string         `mapstructure:"server_type"`
	Image      string         `mapstructure:"image"`
	Ports      []netutil.Port `mapstructure:"ports"`

	Address AddressConfig `mapstructure:"address"`
	DDNS    DDNSConfig    `mapstructure:"ddns"`
	Game    GameConfig    `mapstructure:"game"`
	Backup  BackupConfig  `mapstructure:"backup"`
	SSH     SSHConfig     `mapstructure:"ssh"`

	// Populated from the environment.
	HCloudToken     string `mapstructure:"-"`
	CloudflareToken string `mapstructure:"-"`
}

// AddressConfig is the public address polling policy.
type AddressConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Interval time.Duration `mapstructure:"interval"`
}

// DDNSConfig controls dynamic DNS updates.
type DDNSConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	DNSServer string        `mapstructure:"dns_server"`
}

// GameConfig describes the game container started on boot.
type GameConfig struct {
	ContainerImage string   `mapstructure:"image"`
	Memory         string   `mapstructure:"memory"`
	MOTD           string   `mapstructure:"motd"`
	Icon           string   `mapstructure:"icon"`
	Ops            []string `mapstructure:"ops"`
	Port           int      `mapstructure:"port"`
}

// BackupConfig points at the S3 bucket used by "registry backup".
type BackupConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Key       string `mapstructure:"key"`
	AccessKey string `mapstructure:"-"`
	SecretKey string `mapstructure:"-"`
}

// SSHConfig holds remote access settings.
type SSHConfig struct {
	User string `mapstructure:"user"`

	// ReadyTimeout bounds the wait for sshd to accept connections.
	ReadyTimeout time.Duration `mapstructure:"ready_timeout"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// DefaultPorts is the ingress set opened for a game server: SSH plus the
// game port over both TCP and UDP.
func DefaultPorts() []netutil.Port {
	return []netutil.Port{
		{Protocol: netutil.TCP, Number: 22},
		{Protocol: netutil.TCP, Number: DefaultGamePort},
		{Protocol: netutil.UDP, Number: DefaultGamePort},
	}
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.ServerType == "" {
		c.ServerType = DefaultServerType
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	if len(c.Ports) == 0 {
		c.Ports = DefaultPorts()
	}
	if c.Address.Attempts == 0 {
		c.Address.Attempts = 30
	}
	if c.Address.Interval == 0 {
		c.Address.Interval = time.Second
	}
	if c.DDNS.Timeout == 0 {
		c.DDNS.Timeout = 10 * time.Second
	}
	if c.DDNS.DNSServer == "" {
		c.DDNS.DNSServer = DefaultDNSServer
	}
	if c.Game.ContainerImage == "" {
		c.Game.ContainerImage = DefaultGameImage
	}
	if c.Game.Memory == "" {
		c.Game.Memory = DefaultGameMemory
	}
	if c.Game.Port == 0 {
		c.Game.Port = DefaultGamePort
	}
	if c.Backup.Key == "" {
		c.Backup.Key = "emc/emc.json"
	}
	if c.SSH.User == "" {
		c.SSH.User = DefaultSSHUser
	}
	if c.SSH.ReadyTimeout == 0 {
		c.SSH.ReadyTimeout = DefaultSSHReadyTimeout
	}
}
