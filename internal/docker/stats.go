package docker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/docker/docker/api/types/container"
)

// ResourceStats is a point-in-time resource snapshot for one container.
type ResourceStats struct {
	CPUPercent  float64
	MemoryUsage uint64
	MemoryLimit uint64
	NetworkRx   uint64
	NetworkTx   uint64
}

// ContainerStats reads a single stats snapshot for name. The one-shot stats
// endpoint still primes a previous sample daemon-side, so the CPU delta is
// meaningful.
func (m *Manager) ContainerStats(ctx context.Context, name string) (ResourceStats, error) {
	ctx, cancel := unaryCtx(ctx)
	defer cancel()

	resp, err := m.api.ContainerStats(ctx, name, false)
	if err != nil {
		return ResourceStats{}, fmt.Errorf("failed to read stats for container %s: %w", name, err)
	}
	defer resp.Body.Close()

	var raw container.StatsResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return ResourceStats{}, fmt.Errorf("failed to decode stats for container %s: %w", name, err)
	}

	return summarize(raw), nil
}

func summarize(raw container.StatsResponse) ResourceStats {
	stats := ResourceStats{
		MemoryUsage: raw.MemoryStats.Usage,
		MemoryLimit: raw.MemoryStats.Limit,
	}

	cpuDelta := float64(raw.CPUStats.CPUUsage.TotalUsage) - float64(raw.PreCPUStats.CPUUsage.TotalUsage)
	systemDelta := float64(raw.CPUStats.SystemUsage) - float64(raw.PreCPUStats.SystemUsage)
	if cpuDelta > 0 && systemDelta > 0 {
		cpus := float64(raw.CPUStats.OnlineCPUs)
		if cpus == 0 {
			cpus = float64(len(raw.CPUStats.CPUUsage.PercpuUsage))
		}
		if cpus == 0 {
			cpus = 1
		}
		stats.CPUPercent = cpuDelta / systemDelta * cpus * 100.0
	}

	for _, net := range raw.Networks {
		stats.NetworkRx += net.RxBytes
		stats.NetworkTx += net.TxBytes
	}
	return stats
}

// AggregateStats sums resource snapshots across the cluster container and
// the workload containers the embedded kubelet spawns alongside it (their
// names carry the k8s_ prefix). Per-container read failures are logged and
// skipped so one dead container does not sink the whole report.
func (m *Manager) AggregateStats(ctx context.Context, clusterContainer string) (ResourceStats, error) {
	names, err := m.ListContainersByPrefix(ctx, "k8s_")
	if err != nil {
		return ResourceStats{}, err
	}

	seen := map[string]bool{clusterContainer: true}
	targets := []string{clusterContainer}
	for _, name := range names {
		if !seen[name] {
			seen[name] = true
			targets = append(targets, name)
		}
	}

	var total ResourceStats
	for _, name := range targets {
		stats, err := m.ContainerStats(ctx, name)
		if err != nil {
			log.Debug("stats read skipped", "container", name, "error", err)
			continue
		}
		total.CPUPercent += stats.CPUPercent
		total.MemoryUsage += stats.MemoryUsage
		total.NetworkRx += stats.NetworkRx
		total.NetworkTx += stats.NetworkTx
		if stats.MemoryLimit > total.MemoryLimit {
			total.MemoryLimit = stats.MemoryLimit
		}
	}
	return total, nil
}
