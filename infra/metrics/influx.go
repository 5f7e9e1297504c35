package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	"github.com/kilianp07/v2genv/infra/logger"
)

// InfluxSink writes environment transitions to an InfluxDB instance using
// the official client. Points are stamped with the simulated clock.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordStep writes one env_step point.
func (s *InfluxSink) RecordStep(ev coremetrics.StepEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, stepPoint(ev))
}

// RecordEpisode writes one env_episode point.
func (s *InfluxSink) RecordEpisode(ev coremetrics.EpisodeEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, episodePoint(ev))
}

// Close releases the underlying client.
func (s *InfluxSink) Close() error {
	s.client.Close()
	return nil
}

func stepPoint(ev coremetrics.StepEvent) *write.Point {
	t := ev.Transition
	return write.NewPointWithMeasurement("env_step").
		AddTag("episode_id", ev.EpisodeID).
		AddTag("action", t.Kind().String()).
		AddTag("adjustment", t.Adjustment.String()).
		AddField("step", t.Step).
		AddField("battery_level", round3(t.State.BatteryLevel)).
		AddField("proposed_action", round3(t.ProposedAction)).
		AddField("applied_action", round3(t.AppliedAction)).
		AddField("price", round3(t.Price)).
		AddField("cost", round3(t.Cost)).
		AddField("reward", round3(t.Reward)).
		AddField("cumulative_reward", round3(t.CumulativeReward)).
		SetTime(t.State.Timestamp)
}

func episodePoint(ev coremetrics.EpisodeEvent) *write.Point {
	return write.NewPointWithMeasurement("env_episode").
		AddTag("episode_id", ev.EpisodeID).
		AddField("day", ev.Day).
		AddField("steps", ev.Steps).
		AddField("reward", round3(ev.Reward)).
		AddField("discounted_reward", round3(ev.DiscountedReward)).
		AddField("charged", round3(ev.Charged)).
		AddField("discharged", round3(ev.Discharged)).
		AddField("final_level", round3(ev.FinalLevel)).
		SetTime(ev.End)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
