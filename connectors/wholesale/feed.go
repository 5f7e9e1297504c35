package wholesale

import (
	"context"
	"sync"
	"time"

	"github.com/kilianp07/v2genv/auth"
	"github.com/kilianp07/v2genv/core/factory"
	"github.com/kilianp07/v2genv/core/logger"
	coremon "github.com/kilianp07/v2genv/core/monitoring"
	"github.com/kilianp07/v2genv/core/pricing"
	ilogger "github.com/kilianp07/v2genv/infra/logger"
)

// DefaultScale converts €/MWh to €/kWh.
const DefaultScale = 0.001

// Feed is a price source backed by day-ahead market prices. Each UTC day is
// fetched once and cached. When an hour cannot be resolved the last known
// price is repeated.
type Feed struct {
	client  *Client
	scale   float64
	timeout time.Duration
	log     logger.Logger

	mu      sync.Mutex
	cache   map[int64]float64
	fetched map[int64]bool
	last    float64
}

// FeedOption configures a Feed.
type FeedOption func(*Feed)

// WithScale multiplies every market price by s.
func WithScale(s float64) FeedOption { return func(f *Feed) { f.scale = s } }

// WithLogger sets the logger used to report fetch failures.
func WithLogger(l logger.Logger) FeedOption { return func(f *Feed) { f.log = l } }

// NewFeed wraps client as a pricing.PriceSource.
func NewFeed(client *Client, opts ...FeedOption) *Feed {
	f := &Feed{
		client:  client,
		scale:   DefaultScale,
		timeout: 10 * time.Second,
		log:     logger.Nop{},
		cache:   make(map[int64]float64),
		fetched: make(map[int64]bool),
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

// NextPrice implements pricing.PriceSource.
func (f *Feed) NextPrice(at time.Time) float64 {
	hour := at.UTC().Truncate(time.Hour)
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.cache[hour.Unix()]; ok {
		f.last = p
		return p
	}
	day := hour.Truncate(24 * time.Hour)
	if !f.fetched[day.Unix()] {
		f.fetched[day.Unix()] = true
		f.load(day)
		if p, ok := f.cache[hour.Unix()]; ok {
			f.last = p
			return p
		}
	}
	f.log.Warnf("no market price for %s, repeating %.4f", hour.Format(time.RFC3339), f.last)
	return f.last
}

func (f *Feed) load(day time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	resp, err := f.client.Fetch(ctx, day, day.Add(24*time.Hour))
	if err != nil {
		f.log.Errorf("fetch prices for %s: %v", day.Format("2006-01-02"), err)
		coremon.CaptureException(err, map[string]string{"module": "wholesale"})
		return
	}
	prices, err := resp.Prices()
	if err != nil {
		f.log.Errorf("parse prices for %s: %v", day.Format("2006-01-02"), err)
		return
	}
	for _, p := range prices {
		f.cache[p.Start.Truncate(time.Hour).Unix()] = p.Price * f.scale
	}
	f.log.Infof("loaded %d market prices for %s", len(prices), day.Format("2006-01-02"))
}

func init() {
	_ = pricing.Register("wholesale", func(conf map[string]any) (pricing.PriceSource, error) {
		var c struct {
			URL   string    `json:"url"`
			Scale *float64  `json:"scale"`
			Auth  auth.Conf `json:"auth"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if err := c.Auth.Validate(); err != nil {
			return nil, err
		}
		var cred *auth.ClientCred
		if c.Auth.Enabled() {
			cred = auth.NewClientCred(c.Auth)
		}
		opts := []FeedOption{WithLogger(ilogger.New("wholesale"))}
		if c.Scale != nil {
			opts = append(opts, WithScale(*c.Scale))
		}
		return NewFeed(NewClient(c.URL, cred), opts...), nil
	})
}
