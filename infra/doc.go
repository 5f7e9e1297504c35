// Package infra holds the adapters around the environment: zerolog
// logging, Prometheus and InfluxDB sinks, the MQTT publisher and Sentry
// reporting. They depend only on interfaces defined under core.
package infra
