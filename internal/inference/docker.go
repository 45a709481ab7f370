package inference

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
)

const (
	DefaultImage         = "ghcr.io/biaslens/classifier-serve:latest"
	DefaultContainerName = "biaslens-classifier"
	DefaultPort          = "8500"
	ContainerPort        = "8500/tcp"
	ModelDir             = "/models"
	Label                = "biaslens-classifier"
)

// ContainerStatus represents the state of the classifier container.
type ContainerStatus string

const (
	StatusRunning   ContainerStatus = "running"
	StatusStopped   ContainerStatus = "stopped"
	StatusNotFound  ContainerStatus = "not_found"
	StatusUnhealthy ContainerStatus = "unhealthy"
	StatusStarting  ContainerStatus = "starting"
)

// ContainerManager owns the classifier sidecar's Docker lifecycle. The model
// is loaded exactly once, inside the container, and the rest of the process
// treats the running sidecar as a read-only scoring capability reached over
// HTTP. The manager is created by the server composition root and injected;
// nothing else starts or stops the model.
type ContainerManager struct {
	cli           *client.Client
	containerName string
	imageName     string
	modelPath     string // Host path for the model cache (~/.biaslens/models)
	hostPort      string
	labels        map[string]string
}

// DockerConfig holds configuration for the container manager.
type DockerConfig struct {
	ContainerName string
	Image         string
	ModelPath     string
	HostPort      string
	Labels        map[string]string // Optional labels (used for test cleanup)
}

// NewContainerManager creates a new Docker manager for the classifier sidecar.
func NewContainerManager(cfg DockerConfig) (*ContainerManager, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}

	if cfg.ContainerName == "" {
		cfg.ContainerName = DefaultContainerName
	}
	if cfg.Image == "" {
		cfg.Image = DefaultImage
	}
	if cfg.HostPort == "" {
		cfg.HostPort = DefaultPort
	}

	labels := map[string]string{Label: "true"}
	for k, v := range cfg.Labels {
		labels[k] = v
	}

	return &ContainerManager{
		cli:           cli,
		containerName: cfg.ContainerName,
		imageName:     cfg.Image,
		modelPath:     cfg.ModelPath,
		hostPort:      cfg.HostPort,
		labels:        labels,
	}, nil
}

// Close closes the Docker client.
func (m *ContainerManager) Close() error {
	return m.cli.Close()
}

// Start starts the classifier container, creating it if needed, and blocks
// until the sidecar reports the model loaded.
func (m *ContainerManager) Start(ctx context.Context) error {
	if _, err := m.cli.Ping(ctx); err != nil {
		return fmt.Errorf("docker is not running: %w", err)
	}

	status, containerID, err := m.getContainerStatus(ctx)
	if err != nil {
		return err
	}

	switch status {
	case StatusRunning:
		return nil
	case StatusStopped:
		if err := m.cli.ContainerStart(ctx, containerID, container.StartOptions{}); err != nil {
			return fmt.Errorf("failed to start existing container: %w", err)
		}
		return m.waitForReady(ctx, 60*time.Second)
	case StatusNotFound:
		return m.createAndStart(ctx)
	default:
		return fmt.Errorf("container in unexpected state: %s", status)
	}
}

// Stop stops the classifier container.
func (m *ContainerManager) Stop(ctx context.Context) error {
	status, containerID, err := m.getContainerStatus(ctx)
	if err != nil {
		return err
	}
	if status == StatusNotFound {
		return nil
	}

	timeout := 10
	if err := m.cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		return fmt.Errorf("failed to stop container: %w", err)
	}
	return nil
}

// Remove stops and removes the classifier container.
func (m *ContainerManager) Remove(ctx context.Context) error {
	status, containerID, err := m.getContainerStatus(ctx)
	if err != nil {
		return err
	}
	if status == StatusNotFound {
		return nil
	}

	if status == StatusRunning {
		if err := m.Stop(ctx); err != nil {
			return err
		}
	}

	if err := m.cli.ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force:         true,
		RemoveVolumes: true,
	}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}
	return nil
}

// Status returns the current status of the classifier container.
func (m *ContainerManager) Status(ctx context.Context) (ContainerStatus, error) {
	status, _, err := m.getContainerStatus(ctx)
	return status, err
}

// Logs returns the container logs.
func (m *ContainerManager) Logs(ctx context.Context, tail string) (string, error) {
	status, containerID, err := m.getContainerStatus(ctx)
	if err != nil {
		return "", err
	}
	if status == StatusNotFound {
		return "", fmt.Errorf("container not found")
	}

	logs, err := m.cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return "", fmt.Errorf("failed to get logs: %w", err)
	}
	defer logs.Close()

	logBytes, err := io.ReadAll(logs)
	if err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}
	return string(logBytes), nil
}

// URL returns the sidecar API URL.
func (m *ContainerManager) URL() string {
	return fmt.Sprintf("http://localhost:%s", m.hostPort)
}

// ValidateExisting checks whether an existing container matches the expected
// configuration. Returns nil if compatible or absent.
func (m *ContainerManager) ValidateExisting(ctx context.Context) error {
	status, containerID, err := m.getContainerStatus(ctx)
	if err != nil {
		return err
	}
	if status == StatusNotFound {
		return nil
	}

	info, err := m.cli.ContainerInspect(ctx, containerID)
	if err != nil {
		return fmt.Errorf("failed to inspect container: %w", err)
	}

	bindings := info.HostConfig.PortBindings[ContainerPort]
	if len(bindings) == 0 {
		return fmt.Errorf("existing container has no port binding for %s", ContainerPort)
	}
	if boundPort := bindings[0].HostPort; boundPort != m.hostPort {
		return fmt.Errorf("existing container bound to port %s, expected %s", boundPort, m.hostPort)
	}

	if m.modelPath != "" {
		foundMount := false
		for _, mnt := range info.Mounts {
			if mnt.Destination == ModelDir {
				if mnt.Source != m.modelPath {
					return fmt.Errorf("existing container mounts %s, expected %s", mnt.Source, m.modelPath)
				}
				foundMount = true
				break
			}
		}
		if !foundMount {
			return fmt.Errorf("existing container has no mount for %s", ModelDir)
		}
	}

	return nil
}

// WaitReady waits for the sidecar to finish loading the model.
func (m *ContainerManager) WaitReady(ctx context.Context, timeout time.Duration) error {
	return m.waitForReady(ctx, timeout)
}

// createAndStart creates and starts a new classifier container.
func (m *ContainerManager) createAndStart(ctx context.Context) error {
	if err := m.ensureImage(ctx); err != nil {
		return err
	}

	containerConfig := &container.Config{
		Image: m.imageName,
		Cmd: []string{
			"serve",
			"--host", "0.0.0.0",
			"--port", DefaultPort,
			"--model-dir", ModelDir,
		},
		Labels: m.labels,
		ExposedPorts: nat.PortSet{
			ContainerPort: struct{}{},
		},
		Healthcheck: &container.HealthConfig{
			Test:        []string{"CMD", "curl", "-sf", "http://localhost:" + DefaultPort + "/health"},
			Interval:    2 * time.Second,
			Timeout:     5 * time.Second,
			Retries:     10,
			StartPeriod: 10 * time.Second,
		},
	}

	hostConfig := &container.HostConfig{
		PortBindings: nat.PortMap{
			ContainerPort: []nat.PortBinding{
				{HostIP: "127.0.0.1", HostPort: m.hostPort},
			},
		},
	}
	if m.modelPath != "" {
		hostConfig.Mounts = []mount.Mount{
			{
				Type:   mount.TypeBind,
				Source: m.modelPath,
				Target: ModelDir,
			},
		}
	}

	resp, err := m.cli.ContainerCreate(ctx, containerConfig, hostConfig, nil, nil, m.containerName)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}

	if err := m.cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		_ = m.cli.ContainerRemove(ctx, resp.ID, container.RemoveOptions{Force: true})
		return fmt.Errorf("failed to start container: %w", err)
	}

	// First start pulls model weights into the cache, which can take a while.
	return m.waitForReady(ctx, 120*time.Second)
}

// getContainerStatus returns the status and ID of the container.
func (m *ContainerManager) getContainerStatus(ctx context.Context) (ContainerStatus, string, error) {
	filterArgs := filters.NewArgs()
	filterArgs.Add("name", m.containerName)

	containers, err := m.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return StatusNotFound, "", nil
	}

	c := containers[0]
	switch c.State {
	case "running":
		return StatusRunning, c.ID, nil
	case "exited", "dead":
		return StatusStopped, c.ID, nil
	case "created", "restarting":
		return StatusStarting, c.ID, nil
	default:
		return ContainerStatus(c.State), c.ID, nil
	}
}

// waitForReady polls the sidecar's health endpoint until the model is loaded.
func (m *ContainerManager) waitForReady(ctx context.Context, timeout time.Duration) error {
	httpClient := &http.Client{Timeout: 2 * time.Second}
	url := m.URL() + "/health"

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
			if err != nil {
				return err
			}
			resp, err := httpClient.Do(req)
			if err != nil {
				return err
			}
			_ = resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("unhealthy status: %d", resp.StatusCode)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(timeout.Seconds())),
		retry.Delay(1*time.Second),
	)
}

// ensureImage pulls the classifier image if not present.
func (m *ContainerManager) ensureImage(ctx context.Context) error {
	_, err := m.cli.ImageInspect(ctx, m.imageName)
	if err == nil {
		return nil
	}

	reader, err := m.cli.ImagePull(ctx, m.imageName, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image: %w", err)
	}
	defer reader.Close()

	_, err = io.Copy(io.Discard, reader)
	return err
}
