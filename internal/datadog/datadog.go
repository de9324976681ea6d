package datadog

import (
	"github.com/DataDog/datadog-go/statsd"
	"github.com/rs/zerolog/log"
)

// Client wraps DogStatsD. A nil or disabled Client drops every metric.
type Client struct {
	statsd  *statsd.Client
	enabled bool
}

func New(enabled bool, addr, namespace string, tags []string) *Client {
	if !enabled {
		log.Info().Msg("Datadog metrics disabled")
		return &Client{}
	}

	c, err := statsd.New(addr)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create DogStatsD client")
		return &Client{}
	}

	c.Namespace = namespace
	c.Tags = tags

	log.Info().
		Str("addr", addr).
		Str("namespace", namespace).
		Strs("tags", tags).
		Msg("Datadog metrics initialized")

	return &Client{statsd: c, enabled: true}
}

func (c *Client) Gauge(name string, value float64, tags ...string) {
	if c == nil || c.statsd == nil {
		return
	}
	if err := c.statsd.Gauge(name, value, tags, 1); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("Failed to emit gauge metric")
	}
}

func (c *Client) Incr(name string, tags ...string) {
	if c == nil || c.statsd == nil {
		return
	}
	if err := c.statsd.Incr(name, tags, 1); err != nil {
		log.Warn().Err(err).Str("metric", name).Msg("Failed to emit count metric")
	}
}

func (c *Client) Close() error {
	if c == nil || c.statsd == nil {
		return nil
	}
	return c.statsd.Close()
}

// Enabled reports whether metrics are actually being sent.
func (c *Client) Enabled() bool {
	return c != nil && c.enabled
}
