// Package cluster carries the bookkeeping built on top of the docker layer,
// starting with snapshot-based startup.
package cluster

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/k3dev/k3dev/internal/config"
)

const (
	// rancherDataPath is the k3s state directory inside the cluster
	// container.
	rancherDataPath = "/var/lib/rancher/k3s"

	// localPVStoragePath is where the local-path provisioner volume data
	// lives, pointed at the shared Docker volume.
	localPVStoragePath = "/var/lib/docker/volumes/k3s-local-pv-data/_data"

	// SnapshotPrefix tags every snapshot image this tool produces.
	SnapshotPrefix = "k3dev-snapshot-"
)

// dockerClient is the slice of the docker manager the snapshotter needs.
type dockerClient interface {
	ImageExists(ctx context.Context, ref string) bool
	Exec(ctx context.Context, name string, cmd []string) (string, error)
	CommitContainer(ctx context.Context, name, ref string, labels map[string]string) error
	ListImagesByPattern(ctx context.Context, pattern string) ([]string, error)
	RemoveImage(ctx context.Context, ref string) error
}

// Snapshotter creates and prunes cluster snapshot images. A snapshot is a
// commit of the running cluster container with its state copied into the
// image filesystem, keyed by the configuration that shaped it.
type Snapshotter struct {
	docker dockerClient
	infra  *config.InfrastructureConfig
}

// NewSnapshotter builds a snapshotter over the given docker client.
func NewSnapshotter(docker dockerClient, infra *config.InfrastructureConfig) *Snapshotter {
	return &Snapshotter{docker: docker, infra: infra}
}

// SanitizeVersion makes a version string safe for use in an image name.
func SanitizeVersion(version string) string {
	version = strings.ReplaceAll(version, ".", "-")
	return strings.ReplaceAll(version, "/", "-")
}

// ConfigHash digests the configuration fields that affect cluster state.
// Cluster name, speedup and logging settings deliberately stay out: they can
// change without invalidating a snapshot.
func (s *Snapshotter) ConfigHash() string {
	h := sha256.New()
	h.Write([]byte(s.infra.K3sVersion))
	h.Write([]byte(s.infra.Domain))
	h.Write([]byte(fmt.Sprintf("%d", s.infra.APIPort)))
	h.Write([]byte(fmt.Sprintf("%d", s.infra.HTTPPort)))
	h.Write([]byte(fmt.Sprintf("%d", s.infra.HTTPSPort)))
	for _, port := range s.infra.AdditionalPorts {
		h.Write([]byte(port))
	}
	h.Write([]byte(rancherDataPath))
	h.Write([]byte(localPVStoragePath))
	h.Write([]byte("--docker"))
	h.Write([]byte("--disable=metrics-server"))
	h.Write([]byte("--disable=servicelb"))
	return fmt.Sprintf("%x", h.Sum(nil))[:8]
}

// ImageName is the snapshot image for the current configuration, e.g.
// k3dev-snapshot-v1-33-4-k3s1-a7b3c2d1.
func (s *Snapshotter) ImageName() string {
	return SnapshotPrefix + SanitizeVersion(s.infra.K3sVersion) + "-" + s.ConfigHash()
}

// Exists reports whether a snapshot for the current configuration is present
// locally.
func (s *Snapshotter) Exists(ctx context.Context) bool {
	return s.docker.ImageExists(ctx, s.ImageName())
}

// Create snapshots the running cluster container. The state directories are
// first copied into /snapshot-data inside the container so the commit
// captures them, then the container is committed without pausing.
func (s *Snapshotter) Create(ctx context.Context) error {
	imageName := s.ImageName()
	containerName := s.infra.ContainerName()
	log.Info("creating cluster snapshot", "image", imageName)

	copyCmd := fmt.Sprintf(
		"mkdir -p /snapshot-data && rm -rf /snapshot-data/rancher /snapshot-data/pv && cp -a %s /snapshot-data/rancher && cp -a %s /snapshot-data/pv",
		rancherDataPath, localPVStoragePath,
	)
	if _, err := s.docker.Exec(ctx, containerName, []string{"sh", "-c", copyCmd}); err != nil {
		return fmt.Errorf("failed to save cluster state: %w", err)
	}

	labels := map[string]string{
		"k3dev.snapshot.created": time.Now().UTC().Format(time.RFC3339),
		"k3dev.k3s_version":      s.infra.K3sVersion,
		"k3dev.config_hash":      s.ConfigHash(),
		"k3dev.domain":           s.infra.Domain,
	}
	if err := s.docker.CommitContainer(ctx, containerName, imageName, labels); err != nil {
		return err
	}

	log.Info("snapshot created", "image", imageName)
	return nil
}

// CleanupStale removes every snapshot image except the one matching the
// current configuration. Per-image removal failures are logged and skipped.
func (s *Snapshotter) CleanupStale(ctx context.Context) error {
	snapshots, err := s.docker.ListImagesByPattern(ctx, SnapshotPrefix)
	if err != nil {
		return err
	}
	if len(snapshots) == 0 {
		return nil
	}

	current := s.ImageName()
	removed := 0
	for _, snapshot := range snapshots {
		if strings.HasPrefix(snapshot, current) {
			continue
		}
		if err := s.docker.RemoveImage(ctx, snapshot); err != nil {
			log.Warn("failed to remove old snapshot", "image", snapshot, "error", err)
			continue
		}
		log.Debug("removed old snapshot", "image", snapshot)
		removed++
	}

	if removed > 0 {
		log.Info("old snapshots cleaned up", "removed", removed)
	}
	return nil
}
