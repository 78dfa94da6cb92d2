// Package payload renders the cloud-init user data that turns a fresh
// docker-ce server into a game server.
//
// The game runs in a container managed by a systemd unit. Stopping the
// unit archives the world directory so it can be downloaded.
package payload

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ServiceName is the systemd unit running the game container.
	ServiceName = "minecraft-server"
	// ContainerName is the docker container started by the unit.
	ContainerName = "mc"
	// DataDir holds the world on the server.
	DataDir = "/var/lib/minecraft"
	// WorldArchive is written whenever the unit stops.
	WorldArchive = "/tmp/minecraft_world.tar.gz"
	// ContainerPort is the port the game listens on inside the container.
	ContainerPort = 25565
	// DefaultIcon is the server list icon.
	DefaultIcon = "https://cdn.drawception.com/images/panels/2017/5-11/WQKtsM529c-1.png"

	unitPath = "/etc/systemd/system/" + ServiceName + ".service"
)

// DefaultMOTD is the server list message for a given emc version.
func DefaultMOTD(version string) string {
	return fmt.Sprintf("ephemeral minecraft server (emc%s)", version)
}

// Options configure the game container.
type Options struct {
	ContainerImage string
	// Memory is the JVM heap, e.g. "6G".
	Memory string
	MOTD   string
	Icon   string
	Ops    []string
	// Port is the public port mapped to the container.
	Port int
}

func (o Options) withDefaults() Options {
	if o.ContainerImage == "" {
		o.ContainerImage = "itzg/minecraft-server:latest"
	}
	if o.Memory == "" {
		o.Memory = "1G"
	}
	if o.Icon == "" {
		o.Icon = DefaultIcon
	}
	if o.Port == 0 {
		o.Port = ContainerPort
	}
	return o
}

type cloudConfig struct {
	PackageUpdate bool        `yaml:"package_update"`
	WriteFiles    []writeFile `yaml:"write_files"`
	RunCmd        [][]string  `yaml:"runcmd"`
}

type writeFile struct {
	Path        string `yaml:"path"`
	Owner       string `yaml:"owner"`
	Permissions string `yaml:"permissions"`
	Content     string `yaml:"content"`
}

// Generate returns the #cloud-config document for opts.
func Generate(opts Options) ([]byte, error) {
	opts = opts.withDefaults()
	cfg := cloudConfig{
		WriteFiles: []writeFile{{
			Path:        unitPath,
			Owner:       "root:root",
			Permissions: "0644",
			Content:     Unit(opts),
		}},
		RunCmd: [][]string{
			{"systemctl", "daemon-reload"},
			{"systemctl", "enable", "--now", ServiceName + ".service"},
		},
	}
	body, err := yaml.Marshal(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render cloud-config: %w", err)
	}
	return append([]byte("#cloud-config\n"), body...), nil
}

// Unit returns the systemd unit running the game container.
func Unit(opts Options) string {
	opts = opts.withDefaults()

	create := []string{
		"/usr/bin/docker", "create",
		"--name", ContainerName,
		"-p", fmt.Sprintf("%d:%d", opts.Port, ContainerPort),
		"-v", DataDir + ":/data",
		"-e", "EULA=TRUE",
		"-e", "ANNOUNCE_PLAYER_ACHIEVEMENTS=true",
		"-e", "ENABLE_COMMAND_BLOCK=true",
		"-e", "SNOOPER_ENABLED=false",
		"-e", quote("MEMORY=" + opts.Memory),
		"-e", quote("ICON=" + opts.Icon),
	}
	if len(opts.Ops) > 0 {
		create = append(create, "-e", quote("OPS="+strings.Join(opts.Ops, ",")))
	}
	if opts.MOTD != "" {
		create = append(create, "-e", quote("MOTD="+opts.MOTD))
	}
	create = append(create, opts.ContainerImage)

	var sb strings.Builder
	sb.WriteString("[Unit]\n")
	sb.WriteString("Description=Minecraft server\n")
	sb.WriteString("After=docker.service network-online.target\n")
	sb.WriteString("Requires=docker.service\n")
	sb.WriteString("Wants=network-online.target\n\n")
	sb.WriteString("[Service]\n")
	sb.WriteString("TimeoutStartSec=0\n")
	sb.WriteString("ExecStartPre=/bin/mkdir -p " + DataDir + "\n")
	sb.WriteString("ExecStartPre=/bin/chown 1000 " + DataDir + "\n")
	sb.WriteString("ExecStartPre=-" + strings.Join(create, " ") + "\n")
	sb.WriteString("ExecStart=/usr/bin/docker start -a " + ContainerName + "\n")
	sb.WriteString("ExecStop=/usr/bin/docker stop " + ContainerName + "\n")
	sb.WriteString("ExecStopPost=/usr/bin/tar czf " + WorldArchive + " -C /var/lib minecraft\n\n")
	sb.WriteString("[Install]\n")
	sb.WriteString("WantedBy=multi-user.target\n")
	return sb.String()
}

// quote wraps an argument in double quotes using systemd escaping.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "%", "%%", "$", "$$", "\n", " ")
	return `"` + r.Replace(s) + `"`
}

// JVMMemory picks a heap size that leaves room for the OS on a server
// with ramGB of memory.
func JVMMemory(ramGB float32) string {
	switch {
	case ramGB <= 1:
		return "512M"
	case ramGB <= 2:
		return "1G"
	}
	heap := int(math.Floor(float64(ramGB) * 0.75))
	return strconv.Itoa(heap) + "G"
}
