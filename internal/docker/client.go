package docker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api"
	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// DefaultSocketPath is where the Docker daemon listens on most Linux hosts.
const DefaultSocketPath = "/var/run/docker.sock"

// unaryTimeout bounds non-streaming daemon requests. Streaming requests
// (pulls, exec output, waits, downloads) run unbounded and are cancelled
// through their context.
const unaryTimeout = 120 * time.Second

// ErrDaemonUnavailable reports that the Docker daemon could not be reached:
// the socket is absent, permission was denied, or the API version handshake
// failed. Use errors.Is to detect it.
var ErrDaemonUnavailable = errors.New("docker daemon is not accessible")

// APIClient is the subset of the Docker Engine client the Manager consumes.
// *client.Client satisfies it; tests inject a mock.
type APIClient interface {
	Ping(ctx context.Context) (types.Ping, error)

	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerCommit(ctx context.Context, containerID string, options container.CommitOptions) (container.CommitResponse, error)
	ContainerStats(ctx context.Context, containerID string, stream bool) (container.StatsResponseReader, error)

	ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error)
	ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error)

	CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, container.PathStat, error)
	CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options container.CopyToContainerOptions) error

	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
	ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	ImageRemove(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error)

	NetworkInspect(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error)
	NetworkCreate(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error)
	NetworkRemove(ctx context.Context, networkID string) error

	VolumeCreate(ctx context.Context, options volume.CreateOptions) (volume.Volume, error)
	VolumeInspect(ctx context.Context, volumeID string) (volume.Volume, error)
	VolumeRemove(ctx context.Context, volumeID string, force bool) error
}

// Manager owns one connection to the Docker daemon and is safe for
// concurrent use. All higher-level operations go through it.
type Manager struct {
	api        APIClient
	socketPath string
}

// NewManager connects to the daemon Unix socket at socketPath (or the
// default socket when empty) using the pinned API version.
func NewManager(socketPath string) (*Manager, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}

	cli, err := client.NewClientWithOpts(
		client.WithHost("unix://"+socketPath),
		client.WithVersion(api.DefaultVersion),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: connect to %s: %v", ErrDaemonUnavailable, socketPath, err)
	}

	log.Debug("docker client initialized", "socket", socketPath, "api_version", api.DefaultVersion)
	return &Manager{api: cli, socketPath: socketPath}, nil
}

// NewManagerWithClient wraps an existing API client. Used by tests.
func NewManagerWithClient(api APIClient) *Manager {
	return &Manager{api: api, socketPath: DefaultSocketPath}
}

// SocketPath returns the daemon socket this manager was built for.
func (m *Manager) SocketPath() string {
	return m.socketPath
}

// unaryCtx derives the bounded context used for non-streaming requests.
func unaryCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, unaryTimeout)
}

// Ping checks that the daemon is responsive.
func (m *Manager) Ping(ctx context.Context) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	if _, err := m.api.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnavailable, err)
	}
	return nil
}

// IsAccessible reports whether the daemon currently answers pings.
func (m *Manager) IsAccessible(ctx context.Context) bool {
	return m.Ping(ctx) == nil
}

// WaitForDaemon polls Ping up to maxRetries times, sleeping interval between
// attempts. The final failed attempt does not sleep. Returns nil on the
// first successful ping.
func (m *Manager) WaitForDaemon(ctx context.Context, maxRetries int, interval time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		if m.IsAccessible(ctx) {
			return nil
		}
		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}
	}
	return fmt.Errorf("%w: no response after %d retries", ErrDaemonUnavailable, maxRetries)
}
