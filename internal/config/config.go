// Package config loads and validates the k3dev configuration tree.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root of the configuration tree.
type Config struct {
	Infrastructure InfrastructureConfig `yaml:"infrastructure"`
	Placeholders   map[string]string    `yaml:"placeholders"`
	Commands       []CommandGroup       `yaml:"commands"`
	Keybindings    *KeybindingsConfig   `yaml:"keybindings"`
	Logging        LoggingConfig        `yaml:"logging"`
	Docker         DockerConfig         `yaml:"docker"`
}

// InfrastructureConfig describes the local cluster to run.
type InfrastructureConfig struct {
	ClusterName     string        `yaml:"cluster_name"`
	Domain          string        `yaml:"domain"`
	K3sVersion      string        `yaml:"k3s_version"`
	APIPort         int           `yaml:"api_port"`
	HTTPPort        int           `yaml:"http_port"`
	HTTPSPort       int           `yaml:"https_port"`
	AdditionalPorts []string      `yaml:"additional_ports"`
	Speedup         SpeedupConfig `yaml:"speedup"`
}

// ContainerName is the cluster container name derived from the cluster name.
func (c *InfrastructureConfig) ContainerName() string {
	return c.ClusterName + "-server"
}

// NetworkName is the Docker network name derived from the cluster name.
func (c *InfrastructureConfig) NetworkName() string {
	return c.ClusterName + "-net"
}

// SpeedupConfig controls snapshot-based startup.
type SpeedupConfig struct {
	UseSnapshot         bool `yaml:"use_snapshot"`
	SnapshotAutoCleanup bool `yaml:"snapshot_auto_cleanup"`
}

// CommandGroup is a named group of commands in the menu.
type CommandGroup struct {
	Name     string         `yaml:"name"`
	Icon     string         `yaml:"icon"`
	Commands []CommandEntry `yaml:"commands"`
}

// CommandEntry is a single executable command or a submenu of further
// entries.
type CommandEntry struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Exec        *ExecConfig    `yaml:"exec"`
	Commands    []CommandEntry `yaml:"commands"`
}

// ExecConfig describes how to run a command inside a pod.
type ExecConfig struct {
	Target  TargetConfig      `yaml:"target"`
	Workdir string            `yaml:"workdir"`
	Cmd     string            `yaml:"cmd"`
	Input   map[string]string `yaml:"input"`
}

// TargetConfig selects the pod to execute in.
type TargetConfig struct {
	Namespace string `yaml:"namespace"`
	Selector  string `yaml:"selector"`
	PodName   string `yaml:"pod_name"`
	Container string `yaml:"container"`
}

// KeybindingsConfig overrides built-in key bindings. Empty fields keep the
// defaults; Custom maps keys to command paths.
type KeybindingsConfig struct {
	Quit           string `yaml:"quit"`
	Help           string `yaml:"help"`
	Refresh        string `yaml:"refresh"`
	CommandPalette string `yaml:"command_palette"`
	UpdateHosts    string `yaml:"update_hosts"`
	Cancel         string `yaml:"cancel"`
	MoveUp         string `yaml:"move_up"`
	MoveDown       string `yaml:"move_down"`
	MoveLeft       string `yaml:"move_left"`
	MoveRight      string `yaml:"move_right"`
	ToggleFocus    string `yaml:"toggle_focus"`
	Execute        string `yaml:"execute"`

	Custom map[string]string `yaml:"custom"`
}

// LoggingConfig controls file logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	File    string `yaml:"file"`
	Level   string `yaml:"level"`
}

// ResolveFile expands the {cluster_name} placeholder in the log file path.
func (l *LoggingConfig) ResolveFile(clusterName string) string {
	return strings.ReplaceAll(l.File, "{cluster_name}", clusterName)
}

// DockerConfig selects the daemon socket.
type DockerConfig struct {
	SocketPath string `yaml:"socket_path"`
}

// Default returns a configuration populated with every default value.
// Unmarshalling user YAML over it keeps defaults for absent keys.
func Default() *Config {
	return &Config{
		Infrastructure: InfrastructureConfig{
			ClusterName:     "k3dev",
			Domain:          "local.k8s.dev",
			K3sVersion:      "v1.33.4-k3s1",
			APIPort:         6443,
			HTTPPort:        80,
			HTTPSPort:       443,
			AdditionalPorts: []string{"2345:2345", "8309:8309"},
			Speedup: SpeedupConfig{
				UseSnapshot:         true,
				SnapshotAutoCleanup: true,
			},
		},
		Logging: LoggingConfig{
			Enabled: true,
			File:    "/tmp/k3dev-{cluster_name}.log",
			Level:   "info",
		},
	}
}

// Load reads the configuration from path, or from the first file found in
// the standard search locations when path is empty. Placeholders are
// resolved and the structural checks are applied before returning.
func Load(path string) (*Config, error) {
	found, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(found)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", found, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", found, err)
	}

	cfg.resolvePlaceholders()

	if err := cfg.checkStructure(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// findConfigFile resolves the config path: an explicit path must exist, an
// empty one walks the standard locations.
func findConfigFile(path string) (string, error) {
	if path != "" {
		expanded := ExpandHome(path)
		if _, err := os.Stat(expanded); err != nil {
			return "", fmt.Errorf("config file not found: %s", path)
		}
		return expanded, nil
	}

	candidates := []string{"./k3dev.yml", "./k3dev.yaml"}
	if configDir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(configDir, "k3dev", "config.yml"),
			filepath.Join(configDir, "k3dev", "config.yaml"),
		)
	}
	candidates = append(candidates, "/etc/k3dev/config.yml", "/etc/k3dev/config.yaml")

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no configuration file found in standard locations")
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
}

var placeholderPattern = regexp.MustCompile(`@(\w+)`)

// ExtractPlaceholders returns the distinct @placeholder names in s, in
// first-appearance order.
func ExtractPlaceholders(s string) []string {
	var names []string
	seen := map[string]bool{}
	for _, match := range placeholderPattern.FindAllStringSubmatch(s, -1) {
		if !seen[match[1]] {
			seen[match[1]] = true
			names = append(names, match[1])
		}
	}
	return names
}

// HasPlaceholders reports whether s contains any @placeholder pattern.
func HasPlaceholders(s string) bool {
	return placeholderPattern.MatchString(s)
}

// resolvePlaceholders substitutes @name occurrences with the configured
// placeholder values across the command tree. Names without a definition are
// left as-is for the validator to flag.
func (c *Config) resolvePlaceholders() {
	if len(c.Placeholders) == 0 {
		return
	}
	for i := range c.Commands {
		c.Commands[i].Name = c.substitute(c.Commands[i].Name)
		for j := range c.Commands[i].Commands {
			c.resolveEntry(&c.Commands[i].Commands[j])
		}
	}
}

func (c *Config) resolveEntry(entry *CommandEntry) {
	entry.Name = c.substitute(entry.Name)
	if entry.Exec != nil {
		entry.Exec.Target.Namespace = c.substitute(entry.Exec.Target.Namespace)
		entry.Exec.Target.Selector = c.substitute(entry.Exec.Target.Selector)
		entry.Exec.Target.PodName = c.substitute(entry.Exec.Target.PodName)
		entry.Exec.Target.Container = c.substitute(entry.Exec.Target.Container)
		entry.Exec.Workdir = c.substitute(entry.Exec.Workdir)
		entry.Exec.Cmd = c.substitute(entry.Exec.Cmd)
	}
	for i := range entry.Commands {
		c.resolveEntry(&entry.Commands[i])
	}
}

func (c *Config) substitute(s string) string {
	if s == "" {
		return s
	}
	for key, value := range c.Placeholders {
		s = strings.ReplaceAll(s, "@"+key, value)
	}
	return s
}

// checkStructure applies the hard shape requirements that make a config
// unusable when violated. The softer lint checks live in the validator.
func (c *Config) checkStructure() error {
	for _, group := range c.Commands {
		if group.Name == "" {
			return fmt.Errorf("command group must have a name")
		}
		for _, entry := range group.Commands {
			if err := checkEntry(entry, group.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

func checkEntry(entry CommandEntry, groupName string) error {
	if entry.Name == "" {
		return fmt.Errorf("in group %q: command must have a name", groupName)
	}
	if entry.Exec != nil {
		if entry.Exec.Cmd == "" {
			return fmt.Errorf("in group %q: command %q: exec.cmd is required", groupName, entry.Name)
		}
		target := entry.Exec.Target
		if target.Selector == "" && target.PodName == "" {
			return fmt.Errorf("in group %q: command %q: target must specify selector or pod_name", groupName, entry.Name)
		}
	}
	for _, nested := range entry.Commands {
		if err := checkEntry(nested, groupName); err != nil {
			return err
		}
	}
	return nil
}
