package docker

import (
	"context"
	"errors"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
)

// mockAPIClient implements APIClient with per-method function fields. Methods
// without a configured function return "not implemented" so tests fail loudly
// when an unexpected call happens.
type mockAPIClient struct {
	pingFunc func(ctx context.Context) (types.Ping, error)

	containerCreateFunc  func(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	containerStartFunc   func(ctx context.Context, containerID string, options container.StartOptions) error
	containerStopFunc    func(ctx context.Context, containerID string, options container.StopOptions) error
	containerRemoveFunc  func(ctx context.Context, containerID string, options container.RemoveOptions) error
	containerInspectFunc func(ctx context.Context, containerID string) (container.InspectResponse, error)
	containerListFunc    func(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	containerWaitFunc    func(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	containerCommitFunc  func(ctx context.Context, containerID string, options container.CommitOptions) (container.CommitResponse, error)
	containerStatsFunc   func(ctx context.Context, containerID string, stream bool) (container.StatsResponseReader, error)

	execCreateFunc  func(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error)
	execAttachFunc  func(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error)
	execInspectFunc func(ctx context.Context, execID string) (container.ExecInspect, error)

	copyFromContainerFunc func(ctx context.Context, containerID, srcPath string) (io.ReadCloser, container.PathStat, error)
	copyToContainerFunc   func(ctx context.Context, containerID, dstPath string, content io.Reader, options container.CopyToContainerOptions) error

	imagePullFunc    func(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	imageInspectFunc func(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error)
	imageListFunc    func(ctx context.Context, options image.ListOptions) ([]image.Summary, error)
	imageRemoveFunc  func(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error)

	networkInspectFunc func(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error)
	networkCreateFunc  func(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error)
	networkRemoveFunc  func(ctx context.Context, networkID string) error

	volumeCreateFunc  func(ctx context.Context, options volume.CreateOptions) (volume.Volume, error)
	volumeInspectFunc func(ctx context.Context, volumeID string) (volume.Volume, error)
	volumeRemoveFunc  func(ctx context.Context, volumeID string, force bool) error
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAPIClient) Ping(ctx context.Context) (types.Ping, error) {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return types.Ping{}, errNotImplemented
}

func (m *mockAPIClient) ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error) {
	if m.containerCreateFunc != nil {
		return m.containerCreateFunc(ctx, config, hostConfig, networkingConfig, platform, containerName)
	}
	return container.CreateResponse{}, errNotImplemented
}

func (m *mockAPIClient) ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error {
	if m.containerStartFunc != nil {
		return m.containerStartFunc(ctx, containerID, options)
	}
	return errNotImplemented
}

func (m *mockAPIClient) ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error {
	if m.containerStopFunc != nil {
		return m.containerStopFunc(ctx, containerID, options)
	}
	return errNotImplemented
}

func (m *mockAPIClient) ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error {
	if m.containerRemoveFunc != nil {
		return m.containerRemoveFunc(ctx, containerID, options)
	}
	return errNotImplemented
}

func (m *mockAPIClient) ContainerInspect(ctx context.Context, containerID string) (container.InspectResponse, error) {
	if m.containerInspectFunc != nil {
		return m.containerInspectFunc(ctx, containerID)
	}
	return container.InspectResponse{}, errNotImplemented
}

func (m *mockAPIClient) ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error) {
	if m.containerListFunc != nil {
		return m.containerListFunc(ctx, options)
	}
	return nil, errNotImplemented
}

func (m *mockAPIClient) ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error) {
	if m.containerWaitFunc != nil {
		return m.containerWaitFunc(ctx, containerID, condition)
	}
	errCh := make(chan error, 1)
	errCh <- errNotImplemented
	return make(chan container.WaitResponse), errCh
}

func (m *mockAPIClient) ContainerCommit(ctx context.Context, containerID string, options container.CommitOptions) (container.CommitResponse, error) {
	if m.containerCommitFunc != nil {
		return m.containerCommitFunc(ctx, containerID, options)
	}
	return container.CommitResponse{}, errNotImplemented
}

func (m *mockAPIClient) ContainerStats(ctx context.Context, containerID string, stream bool) (container.StatsResponseReader, error) {
	if m.containerStatsFunc != nil {
		return m.containerStatsFunc(ctx, containerID, stream)
	}
	return container.StatsResponseReader{}, errNotImplemented
}

func (m *mockAPIClient) ContainerExecCreate(ctx context.Context, containerID string, options container.ExecOptions) (container.ExecCreateResponse, error) {
	if m.execCreateFunc != nil {
		return m.execCreateFunc(ctx, containerID, options)
	}
	return container.ExecCreateResponse{}, errNotImplemented
}

func (m *mockAPIClient) ContainerExecAttach(ctx context.Context, execID string, options container.ExecAttachOptions) (types.HijackedResponse, error) {
	if m.execAttachFunc != nil {
		return m.execAttachFunc(ctx, execID, options)
	}
	return types.HijackedResponse{}, errNotImplemented
}

func (m *mockAPIClient) ContainerExecInspect(ctx context.Context, execID string) (container.ExecInspect, error) {
	if m.execInspectFunc != nil {
		return m.execInspectFunc(ctx, execID)
	}
	return container.ExecInspect{}, errNotImplemented
}

func (m *mockAPIClient) CopyFromContainer(ctx context.Context, containerID, srcPath string) (io.ReadCloser, container.PathStat, error) {
	if m.copyFromContainerFunc != nil {
		return m.copyFromContainerFunc(ctx, containerID, srcPath)
	}
	return nil, container.PathStat{}, errNotImplemented
}

func (m *mockAPIClient) CopyToContainer(ctx context.Context, containerID, dstPath string, content io.Reader, options container.CopyToContainerOptions) error {
	if m.copyToContainerFunc != nil {
		return m.copyToContainerFunc(ctx, containerID, dstPath, content, options)
	}
	return errNotImplemented
}

func (m *mockAPIClient) ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error) {
	if m.imagePullFunc != nil {
		return m.imagePullFunc(ctx, refStr, options)
	}
	return nil, errNotImplemented
}

func (m *mockAPIClient) ImageInspect(ctx context.Context, imageID string, opts ...client.ImageInspectOption) (image.InspectResponse, error) {
	if m.imageInspectFunc != nil {
		return m.imageInspectFunc(ctx, imageID, opts...)
	}
	return image.InspectResponse{}, errNotImplemented
}

func (m *mockAPIClient) ImageList(ctx context.Context, options image.ListOptions) ([]image.Summary, error) {
	if m.imageListFunc != nil {
		return m.imageListFunc(ctx, options)
	}
	return nil, errNotImplemented
}

func (m *mockAPIClient) ImageRemove(ctx context.Context, imageID string, options image.RemoveOptions) ([]image.DeleteResponse, error) {
	if m.imageRemoveFunc != nil {
		return m.imageRemoveFunc(ctx, imageID, options)
	}
	return nil, errNotImplemented
}

func (m *mockAPIClient) NetworkInspect(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error) {
	if m.networkInspectFunc != nil {
		return m.networkInspectFunc(ctx, networkID, options)
	}
	return network.Inspect{}, errNotImplemented
}

func (m *mockAPIClient) NetworkCreate(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error) {
	if m.networkCreateFunc != nil {
		return m.networkCreateFunc(ctx, name, options)
	}
	return network.CreateResponse{}, errNotImplemented
}

func (m *mockAPIClient) NetworkRemove(ctx context.Context, networkID string) error {
	if m.networkRemoveFunc != nil {
		return m.networkRemoveFunc(ctx, networkID)
	}
	return errNotImplemented
}

func (m *mockAPIClient) VolumeCreate(ctx context.Context, options volume.CreateOptions) (volume.Volume, error) {
	if m.volumeCreateFunc != nil {
		return m.volumeCreateFunc(ctx, options)
	}
	return volume.Volume{}, errNotImplemented
}

func (m *mockAPIClient) VolumeInspect(ctx context.Context, volumeID string) (volume.Volume, error) {
	if m.volumeInspectFunc != nil {
		return m.volumeInspectFunc(ctx, volumeID)
	}
	return volume.Volume{}, errNotImplemented
}

func (m *mockAPIClient) VolumeRemove(ctx context.Context, volumeID string, force bool) error {
	if m.volumeRemoveFunc != nil {
		return m.volumeRemoveFunc(ctx, volumeID, force)
	}
	return errNotImplemented
}
