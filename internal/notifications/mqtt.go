package notifications

import (
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
)

const (
	connectTimeout = 10 * time.Second
	publishTimeout = 5 * time.Second
	maxConnectWait = 30 * time.Second
)

type MQTTPublisher struct {
	client paho.Client
	prefix string
}

var newClient = func(opts *paho.ClientOptions) paho.Client {
	return paho.NewClient(opts)
}

// NewMQTTPublisher connects to broker, retrying with exponential backoff for
// up to maxConnectWait before giving up.
func NewMQTTPublisher(broker, clientID, prefix string) (*MQTTPublisher, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Str("broker", broker).Msg("MQTT connection lost")
		}).
		SetOnConnectHandler(func(paho.Client) {
			log.Info().Str("broker", broker).Msg("MQTT connected")
		})

	client := newClient(opts)

	connect := func() error {
		token := client.Connect()
		if !token.WaitTimeout(connectTimeout) {
			return fmt.Errorf("connection timeout")
		}
		return token.Error()
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxConnectWait

	err := backoff.RetryNotify(connect, b, func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Str("broker", broker).Msg("MQTT connect failed")
	})
	if err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &MQTTPublisher{client: client, prefix: prefix}, nil
}

func (p *MQTTPublisher) topic(name string) string {
	if p.prefix == "" {
		return name
	}
	return p.prefix + "/" + name
}

func (p *MQTTPublisher) PublishPress(event PressEvent) error {
	payload, err := FormatPressPayload(event)
	if err != nil {
		return fmt.Errorf("format press payload: %w", err)
	}
	return p.publish(p.topic(TopicButton), false, payload)
}

// PublishLight is retained so new subscribers see the current light state.
func (p *MQTTPublisher) PublishLight(event LightEvent) error {
	payload, err := FormatLightPayload(event)
	if err != nil {
		return fmt.Errorf("format light payload: %w", err)
	}
	return p.publish(p.topic(TopicLight), true, payload)
}

func (p *MQTTPublisher) publish(topic string, retained bool, payload []byte) error {
	token := p.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
