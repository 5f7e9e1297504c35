// Package metrics defines the sinks that observe the environment. A sink
// receives one StepEvent per transition and, when it implements
// EpisodeRecorder, one EpisodeEvent per simulated day. Concrete sinks
// (Prometheus, InfluxDB, MQTT) live in infra and register themselves with
// the factory in this package; NewMetricsSink combines several of them into
// a MultiSink.
package metrics
