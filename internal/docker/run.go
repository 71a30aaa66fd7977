package docker

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/go-connections/nat"
)

// PortMapping publishes a container TCP port on a host port.
type PortMapping struct {
	Host      int
	Container int
}

// VolumeMount attaches a host path or named volume to a container path.
// Options is a small grammar: empty and "volume" become plain binds,
// "bind-propagation=<mode>" becomes a bind mount with that propagation, and
// anything else becomes a bind mount with daemon-default propagation.
type VolumeMount struct {
	Source  string
	Target  string
	Options string
}

// EnvVar is one environment variable entry. Order is preserved.
type EnvVar struct {
	Key   string
	Value string
}

// ContainerRunConfig describes a container to create and optionally start.
// Name and Image are required; everything else falls back to image or daemon
// defaults when unset.
type ContainerRunConfig struct {
	Name     string
	Hostname string
	Image    string

	// Detach starts the container after creating it. When false the
	// container is left in the created state.
	Detach bool

	Privileged   bool
	CgroupnsHost bool
	PidHost      bool

	Ports   []PortMapping
	Volumes []VolumeMount
	Env     []EnvVar
	Network string

	// Entrypoint overrides the image entrypoint with a single binary. nil
	// keeps the image default; an empty string clears the entrypoint
	// entirely.
	Entrypoint *string
	Command    []string
}

// propagationModes maps the volume-option grammar to daemon propagation
// values. Unknown modes fall back to rprivate.
var propagationModes = map[string]mount.Propagation{
	"private":  mount.PropagationPrivate,
	"rprivate": mount.PropagationRPrivate,
	"shared":   mount.PropagationShared,
	"rshared":  mount.PropagationRShared,
	"slave":    mount.PropagationSlave,
	"rslave":   mount.PropagationRSlave,
}

// materialize translates cfg into the daemon's create request structures.
// Empty collections stay nil so the daemon applies its defaults.
func materialize(cfg ContainerRunConfig) (*container.Config, *container.HostConfig) {
	var exposed nat.PortSet
	var bindings nat.PortMap
	if len(cfg.Ports) > 0 {
		exposed = make(nat.PortSet, len(cfg.Ports))
		bindings = make(nat.PortMap, len(cfg.Ports))
		for _, p := range cfg.Ports {
			port := nat.Port(fmt.Sprintf("%d/tcp", p.Container))
			exposed[port] = struct{}{}
			bindings[port] = append(bindings[port], nat.PortBinding{
				HostIP:   "0.0.0.0",
				HostPort: strconv.Itoa(p.Host),
			})
		}
	}

	var binds []string
	var mounts []mount.Mount
	for _, v := range cfg.Volumes {
		switch {
		case v.Options == "" || v.Options == "volume":
			binds = append(binds, v.Source+":"+v.Target)
		case strings.HasPrefix(v.Options, "bind-propagation="):
			modeName := strings.TrimPrefix(v.Options, "bind-propagation=")
			propagation, ok := propagationModes[modeName]
			if !ok {
				propagation = mount.PropagationRPrivate
			}
			mounts = append(mounts, mount.Mount{
				Type:        mount.TypeBind,
				Source:      v.Source,
				Target:      v.Target,
				BindOptions: &mount.BindOptions{Propagation: propagation},
			})
		default:
			mounts = append(mounts, mount.Mount{
				Type:   mount.TypeBind,
				Source: v.Source,
				Target: v.Target,
			})
		}
	}

	var env []string
	for _, e := range cfg.Env {
		env = append(env, e.Key+"="+e.Value)
	}

	var entrypoint strslice.StrSlice
	if cfg.Entrypoint != nil {
		if *cfg.Entrypoint == "" {
			// Non-nil empty slice clears the image entrypoint.
			entrypoint = strslice.StrSlice{}
		} else {
			entrypoint = strslice.StrSlice{*cfg.Entrypoint}
		}
	}

	config := &container.Config{
		Image:        cfg.Image,
		Hostname:     cfg.Hostname,
		Env:          env,
		ExposedPorts: exposed,
		Entrypoint:   entrypoint,
	}
	if len(cfg.Command) > 0 {
		config.Cmd = strslice.StrSlice(cfg.Command)
	}

	hostConfig := &container.HostConfig{
		Privileged:   cfg.Privileged,
		PortBindings: bindings,
		Binds:        binds,
		Mounts:       mounts,
	}
	if cfg.Network != "" {
		hostConfig.NetworkMode = container.NetworkMode(cfg.Network)
	}
	if cfg.CgroupnsHost {
		hostConfig.CgroupnsMode = container.CgroupnsModeHost
	}
	if cfg.PidHost {
		hostConfig.PidMode = container.PidMode("host")
	}

	return config, hostConfig
}

// RunContainer creates a container from cfg and, when cfg.Detach is set,
// starts it. Creation is the atomic step; if the start fails, the created
// container is left in place for the caller to inspect or clean up.
func (m *Manager) RunContainer(ctx context.Context, cfg ContainerRunConfig) error {
	if cfg.Name == "" {
		return fmt.Errorf("container name is required")
	}
	if cfg.Image == "" {
		return fmt.Errorf("container image is required")
	}

	config, hostConfig := materialize(cfg)

	createCtx, cancel := unaryCtx(ctx)
	defer cancel()
	if _, err := m.api.ContainerCreate(createCtx, config, hostConfig, nil, nil, cfg.Name); err != nil {
		return fmt.Errorf("failed to create container %s: %w", cfg.Name, err)
	}
	log.Debug("container created", "container", cfg.Name, "image", cfg.Image)

	if !cfg.Detach {
		return nil
	}
	if err := m.StartContainer(ctx, cfg.Name); err != nil {
		return err
	}
	log.Debug("container started", "container", cfg.Name)
	return nil
}
