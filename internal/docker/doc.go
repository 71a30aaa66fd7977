// Package docker drives the container, image, network and volume lifecycle
// against a local Docker daemon for k3dev clusters. It is a thin, typed layer
// over the Engine API: resource primitives, streaming adapters (exec, pull,
// file download) and a run orchestrator that turns a ContainerRunConfig into
// a create-then-start sequence.
package docker
