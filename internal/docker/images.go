package docker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/pkg/jsonmessage"
)

const (
	commitAuthor  = "k3dev"
	commitComment = "k3dev snapshot"
)

// ImageExists reports whether the image is present locally.
func (m *Manager) ImageExists(ctx context.Context, ref string) bool {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	_, err := m.api.ImageInspect(ctx, ref)
	return err == nil
}

// PullImage pulls ref from its registry and drains the progress stream to
// completion. The pull is only considered done once the stream ends; an
// error message anywhere in the stream fails the pull.
func (m *Manager) PullImage(ctx context.Context, ref string) error {
	log.Debug("pulling image", "image", ref)

	reader, err := m.api.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer reader.Close()

	// The stream is newline-delimited JSON progress messages; errors arrive
	// in-band as {"error": ...} records, so a plain drain would miss them.
	if err := jsonmessage.DisplayJSONMessagesStream(reader, io.Discard, 0, false, nil); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}

	log.Debug("image pulled", "image", ref)
	return nil
}

// EnsureImage pulls ref only when it is not already present locally.
func (m *Manager) EnsureImage(ctx context.Context, ref string) error {
	if m.ImageExists(ctx, ref) {
		return nil
	}
	return m.PullImage(ctx, ref)
}

// CommitContainer snapshots a running container into a new image without
// pausing it. The provided labels are attached to the image.
func (m *Manager) CommitContainer(ctx context.Context, name, ref string, labels map[string]string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	_, err := m.api.ContainerCommit(ctx, name, container.CommitOptions{
		Reference: ref,
		Author:    commitAuthor,
		Comment:   commitComment,
		Pause:     false,
		Config:    &container.Config{Labels: labels},
	})
	if err != nil {
		return fmt.Errorf("failed to commit container %s to image %s: %w", name, ref, err)
	}

	log.Info("container committed to image", "container", name, "image", ref)
	return nil
}

// ListImagesByPattern returns every local non-dangling repo tag that starts
// with pattern, in the order the daemon reports them.
func (m *Manager) ListImagesByPattern(ctx context.Context, pattern string) ([]string, error) {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	images, err := m.api.ImageList(ctx, image.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}

	var matches []string
	for _, img := range images {
		for _, tag := range img.RepoTags {
			if strings.HasPrefix(tag, pattern) {
				matches = append(matches, tag)
			}
		}
	}
	return matches, nil
}

// RemoveImage force-removes an image, pruning untagged parents.
func (m *Manager) RemoveImage(ctx context.Context, ref string) error {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	_, err := m.api.ImageRemove(ctx, ref, image.RemoveOptions{
		Force:         true,
		PruneChildren: true,
	})
	if err != nil {
		return fmt.Errorf("failed to remove image %s: %w", ref, err)
	}

	log.Debug("image removed", "image", ref)
	return nil
}
