package docker

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/pkg/stdcopy"
)

// ExitError reports that a command inside a container finished with a
// non-zero exit code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command exited with code %d", e.Code)
}

// Exec runs cmd inside a running container and returns its combined output.
// Stdout and stderr are concatenated in arrival order. Capture is
// best-effort: a mid-stream read error just ends it, and the exit code is
// never inspected. Callers needing either use ExecStreams.
func (m *Manager) Exec(ctx context.Context, name string, cmd []string) (string, error) {
	created, err := m.api.ContainerExecCreate(ctx, name, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create exec in container %s: %w", name, err)
	}

	resp, err := m.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to attach exec in container %s: %w", name, err)
	}
	defer resp.Close()

	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, resp.Reader); err != nil {
		log.Debug("exec output ended early", "container", name, "error", err)
	}
	return buf.String(), nil
}

// ExecStreams runs cmd inside a running container, demultiplexing its output
// into stdout and stderr, and returns the exit code. The exec stream runs
// unbounded; cancel ctx to abort it.
func (m *Manager) ExecStreams(ctx context.Context, name string, cmd []string, stdout, stderr io.Writer) (int, error) {
	created, err := m.api.ContainerExecCreate(ctx, name, container.ExecOptions{
		Cmd:          cmd,
		AttachStdout: true,
		AttachStderr: true,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create exec in container %s: %w", name, err)
	}

	resp, err := m.api.ContainerExecAttach(ctx, created.ID, container.ExecAttachOptions{})
	if err != nil {
		return 0, fmt.Errorf("failed to attach exec in container %s: %w", name, err)
	}
	defer resp.Close()

	if _, err := stdcopy.StdCopy(stdout, stderr, resp.Reader); err != nil {
		return 0, fmt.Errorf("failed to read exec output from container %s: %w", name, err)
	}

	info, err := m.api.ContainerExecInspect(ctx, created.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect exec in container %s: %w", name, err)
	}
	return info.ExitCode, nil
}

// DownloadFile streams a file out of a container to dstPath on the host.
// The daemon hands the file back wrapped in a tar stream and the bytes are
// written verbatim; un-tarring is the caller's job.
func (m *Manager) DownloadFile(ctx context.Context, name, srcPath, dstPath string) error {
	reader, _, err := m.api.CopyFromContainer(ctx, name, srcPath)
	if err != nil {
		return fmt.Errorf("failed to copy %s from container %s: %w", srcPath, name, err)
	}
	defer reader.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dstPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		return fmt.Errorf("failed to write %s: %w", dstPath, err)
	}

	log.Debug("file downloaded from container", "container", name, "src", srcPath, "dst", dstPath)
	return nil
}

// UploadFile writes content into a container at dstPath with the given mode,
// wrapping it in the single-entry tar stream the daemon expects.
func (m *Manager) UploadFile(ctx context.Context, name, dstPath string, content []byte, mode int64) error {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	hdr := &tar.Header{
		Name: filepath.Base(dstPath),
		Mode: mode,
		Size: int64(len(content)),
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("failed to build archive for %s: %w", dstPath, err)
	}
	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("failed to build archive for %s: %w", dstPath, err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to build archive for %s: %w", dstPath, err)
	}

	dir := filepath.Dir(dstPath)
	if err := m.api.CopyToContainer(ctx, name, dir, &buf, container.CopyToContainerOptions{}); err != nil {
		return fmt.Errorf("failed to copy %s into container %s: %w", dstPath, name, err)
	}

	log.Debug("file uploaded to container", "container", name, "dst", dstPath)
	return nil
}

// CopyFileBetweenContainers moves a single file from srcPath in one container
// to dstPath in another, buffering it in memory on the way through.
func (m *Manager) CopyFileBetweenContainers(ctx context.Context, srcContainer, srcPath, dstContainer, dstPath string) error {
	reader, _, err := m.api.CopyFromContainer(ctx, srcContainer, srcPath)
	if err != nil {
		return fmt.Errorf("failed to copy %s from container %s: %w", srcPath, srcContainer, err)
	}
	defer reader.Close()

	tr := tar.NewReader(reader)
	hdr, err := tr.Next()
	if err != nil {
		return fmt.Errorf("failed to read archive for %s from container %s: %w", srcPath, srcContainer, err)
	}

	content, err := io.ReadAll(tr)
	if err != nil {
		return fmt.Errorf("failed to read %s from container %s: %w", srcPath, srcContainer, err)
	}

	return m.UploadFile(ctx, dstContainer, dstPath, content, hdr.Mode)
}
