package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/v2genv/core/factory"
	coremetrics "github.com/kilianp07/v2genv/core/metrics"
	coremon "github.com/kilianp07/v2genv/core/monitoring"
	"github.com/kilianp07/v2genv/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string      `json:"broker"`
	ClientID    string      `json:"client_id"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	TopicPrefix string      `json:"topic_prefix"`
	UseTLS      bool        `json:"use_tls"`
	ClientCert  string      `json:"client_cert"`
	ClientKey   string      `json:"client_key"`
	CABundle    string      `json:"ca_bundle"`
	AuthMethod  string      `json:"auth_method"`
	QoS         byte        `json:"qos"`
	Retain      bool        `json:"retain"`
	LWTTopic    string      `json:"lwt_topic"`
	LWTPayload  string      `json:"lwt_payload"`
	LWTQoS      byte        `json:"lwt_qos"`
	LWTRetain   bool        `json:"lwt_retain"`
	MaxRetries  int         `json:"max_retries"`
	BackoffMS   int         `json:"backoff_ms"`
	TLSConfig   *tls.Config `json:"-"`
}

// DefaultTopicPrefix roots every topic the publisher writes.
const DefaultTopicPrefix = "v2genv"

// SetDefaults fills the optional fields.
func (c *Config) SetDefaults() {
	if c.TopicPrefix == "" {
		c.TopicPrefix = DefaultTopicPrefix
	}
	c.TopicPrefix = strings.TrimSuffix(c.TopicPrefix, "/")
	if c.ClientID == "" {
		c.ClientID = "v2genv-" + uuid.NewString()
	}
	if c.LWTTopic == "" {
		c.LWTTopic = c.TopicPrefix + "/status"
		c.LWTPayload = "offline"
		c.LWTRetain = true
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffMS <= 0 {
		c.BackoffMS = 100
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Broker == "" {
		return fmt.Errorf("mqtt broker is required")
	}
	if c.QoS > 2 || c.LWTQoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2")
	}
	switch c.AuthMethod {
	case "", "username_password", "certificate", "both":
	default:
		return fmt.Errorf("unknown mqtt auth_method %q", c.AuthMethod)
	}
	return nil
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher streams environment transitions and episode summaries to an
// MQTT broker. It implements the metrics sink interfaces.
type Publisher struct {
	cli    pahoClient
	prefix string
	qos    byte
	retain bool

	mu          sync.Mutex
	logger      logger.Logger
	statusTopic string
	maxRetries  int
	backoff     time.Duration
}

// NewPublisher connects to the broker described by cfg.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt_publisher")
	p := &Publisher{
		prefix:      cfg.TopicPrefix,
		qos:         cfg.QoS,
		retain:      cfg.Retain,
		logger:      log,
		statusTopic: cfg.LWTTopic,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Duration(cfg.BackoffMS) * time.Millisecond,
	}
	opts.OnConnect = func(c paho.Client) {
		log.Infof("MQTT connected")
		if token := c.Publish(p.statusTopic, cfg.LWTQoS, true, "online"); token.Wait() && token.Error() != nil {
			log.Errorf("status publish error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	p.cli = c
	return p, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS || cfg.AuthMethod == "certificate" || cfg.AuthMethod == "both" {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	if cfg.LWTTopic != "" {
		opts.SetWill(cfg.LWTTopic, cfg.LWTPayload, cfg.LWTQoS, cfg.LWTRetain)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	cfg := &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}
	return cfg, nil
}

// StepMessage is the JSON payload published for every transition.
type StepMessage struct {
	EpisodeID        string    `json:"episode_id"`
	Day              int       `json:"day"`
	Step             int       `json:"step"`
	Timestamp        time.Time `json:"timestamp"`
	BatteryLevel     float64   `json:"battery_level"`
	ProposedAction   float64   `json:"proposed_action"`
	AppliedAction    float64   `json:"applied_action"`
	Action           string    `json:"action"`
	Adjustment       string    `json:"adjustment"`
	Price            float64   `json:"price"`
	Cost             float64   `json:"cost"`
	Reward           float64   `json:"reward"`
	CumulativeReward float64   `json:"cumulative_reward"`
}

// EpisodeMessage is the JSON payload published when a day completes.
type EpisodeMessage struct {
	EpisodeID        string    `json:"episode_id"`
	Day              int       `json:"day"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	Steps            int       `json:"steps"`
	Reward           float64   `json:"reward"`
	DiscountedReward float64   `json:"discounted_reward"`
	Charged          float64   `json:"charged"`
	Discharged       float64   `json:"discharged"`
	FinalLevel       float64   `json:"final_level"`
}

// StepTopic returns the topic used for transitions of an episode.
func (p *Publisher) StepTopic(episodeID string) string {
	return fmt.Sprintf("%s/%s/step", p.prefix, episodeID)
}

// EpisodeTopic returns the topic used for an episode summary.
func (p *Publisher) EpisodeTopic(episodeID string) string {
	return fmt.Sprintf("%s/%s/episode", p.prefix, episodeID)
}

// RecordStep publishes the transition as a StepMessage.
func (p *Publisher) RecordStep(ev coremetrics.StepEvent) error {
	t := ev.Transition
	msg := StepMessage{
		EpisodeID:        ev.EpisodeID,
		Day:              ev.Day,
		Step:             t.Step,
		Timestamp:        t.State.Timestamp,
		BatteryLevel:     t.State.BatteryLevel,
		ProposedAction:   t.ProposedAction,
		AppliedAction:    t.AppliedAction,
		Action:           t.Kind().String(),
		Adjustment:       t.Adjustment.String(),
		Price:            t.Price,
		Cost:             t.Cost,
		Reward:           t.Reward,
		CumulativeReward: t.CumulativeReward,
	}
	return p.publish(p.StepTopic(ev.EpisodeID), ev.EpisodeID, msg)
}

// RecordEpisode publishes the summary as an EpisodeMessage.
func (p *Publisher) RecordEpisode(ev coremetrics.EpisodeEvent) error {
	msg := EpisodeMessage{
		EpisodeID:        ev.EpisodeID,
		Day:              ev.Day,
		Start:            ev.Start,
		End:              ev.End,
		Steps:            ev.Steps,
		Reward:           ev.Reward,
		DiscountedReward: ev.DiscountedReward,
		Charged:          ev.Charged,
		Discharged:       ev.Discharged,
		FinalLevel:       ev.FinalLevel,
	}
	return p.publish(p.EpisodeTopic(ev.EpisodeID), ev.EpisodeID, msg)
}

func (p *Publisher) publish(topic, episodeID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.logger.Debugf("published to %s", topic)
			return nil
		}
		p.logger.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	coremon.CaptureException(publishErr, map[string]string{"module": "mqtt", "topic": topic, "episode_id": episodeID})
	return publishErr
}

// Close publishes the offline status and disconnects.
func (p *Publisher) Close() error {
	if p.cli == nil || !p.cli.IsConnected() {
		return nil
	}
	token := p.cli.Publish(p.statusTopic, 0, true, "offline")
	token.Wait()
	p.cli.Disconnect(250)
	return token.Error()
}

func init() {
	_ = coremetrics.RegisterMetricsSink("mqtt", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c Config
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewPublisher(c)
	})
}
