package hermestools

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"testing"

	"github.com/ory/dockertest"
)

// DockerServiceConfig describes a throwaway container and how to build a
// client for it once its port is reachable.
type DockerServiceConfig[T any] struct {
	DockerImage    string
	DockerImageTag string
	InternalPort   int
	Environment    map[string]string
	Builder        func(host string, port int) (T, error)
}

func (config DockerServiceConfig[T]) Env() []string {
	env := []string{}
	for k, v := range config.Environment {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// GetDockerService starts the container and retries Builder until it
// succeeds. The test is skipped in short mode or when no Docker daemon
// answers.
func GetDockerService[T any](
	t *testing.T,
	config DockerServiceConfig[T],
) T {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping container test in short mode.")
	}

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("Docker unavailable: %s", err)
	}

	if err := pool.Client.Ping(); err != nil {
		t.Skipf("Docker unavailable: %s", err)
	}

	resource, err := pool.Run(
		config.DockerImage,
		config.DockerImageTag,
		config.Env(),
	)
	if err != nil {
		t.Fatalf("Could not start %s:%s: %s", config.DockerImage, config.DockerImageTag, err)
	}

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Errorf("Could not purge resource: %s", err)
		}
	})

	host := "localhost"
	if dockerHost := os.Getenv("DOCKER_HOST"); dockerHost != "" {
		if u, err := url.Parse(dockerHost); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		}
	}

	port, err := strconv.Atoi(resource.GetPort(fmt.Sprintf("%d/tcp", config.InternalPort)))
	if err != nil {
		t.Fatalf("No published port for %d: %s", config.InternalPort, err)
	}

	var service T
	if err := pool.Retry(func() error {
		var err error
		service, err = config.Builder(host, port)
		return err
	}); err != nil {
		t.Fatalf("Could not reach %s: %s", config.DockerImage, err)
	}

	return service
}
