// Package util provides helpers shared by the container-backed tests.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	InfluxStartupTimeout = 60 * time.Second
	MetricTimeout        = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

// Influx setup values used by StartInflux.
const (
	InfluxOrg    = "v2genv"
	InfluxBucket = "episodes"
	InfluxToken  = "v2genv-token"
)

// WaitForMetric polls metricsURL until substr appears in the body or ctx is
// done.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, metricsURL, nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if rerr != nil {
				return fmt.Errorf("read metrics body: %w", rerr)
			}
			if strings.Contains(string(body), substr) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// StartMosquitto runs an anonymous Mosquitto broker using the config the
// image ships, and returns its tcp:// URL.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	return start(ctx, tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForAll(wait.ForListeningPort("1883/tcp"), wait.ForLog("running")),
	}, "1883", "tcp")
}

// StartInflux runs InfluxDB 2.7 in setup mode with InfluxOrg, InfluxBucket
// and InfluxToken, and returns its base URL.
func StartInflux(ctx context.Context) (string, func(), error) {
	return start(ctx, tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "v2genv",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "v2genv-password",
			"DOCKER_INFLUXDB_INIT_ORG":         InfluxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      InfluxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": InfluxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(InfluxStartupTimeout),
	}, "8086", "http")
}

// start runs req and returns scheme://host:port for the mapped port.
func start(ctx context.Context, req tc.ContainerRequest, port, scheme string) (string, func(), error) {
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }

	host, err := cont.Host(ctx)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	mapped, err := cont.MappedPort(ctx, nat.Port(port))
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port()), cleanup, nil
}
