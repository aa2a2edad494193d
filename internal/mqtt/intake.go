// Package mqtt is an optional third intake for color commands. Messages on
// the configured topic go through the same validator and onto the same bus
// as the HTTP and WebSocket surfaces.
package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/TuteMthCD/nightstand/internal/command"
	"github.com/TuteMthCD/nightstand/internal/logging"
	"github.com/TuteMthCD/nightstand/internal/pixelbus"
)

const connectTimeout = 10 * time.Second

// Config selects the broker and topic for the intake.
type Config struct {
	Broker   string
	Topic    string
	ClientID string
}

// Intake subscribes to a broker topic and feeds validated commands onto the
// pixel bus.
type Intake struct {
	client    paho.Client
	topic     string
	bus       *pixelbus.Bus
	validator *command.Validator
}

// Start connects to the broker and subscribes. The returned Intake must be
// Closed on shutdown.
func Start(config Config, bus *pixelbus.Bus, validator *command.Validator) (*Intake, error) {
	in := &Intake{
		topic:     config.Topic,
		bus:       bus,
		validator: validator,
	}

	opts := paho.NewClientOptions().
		AddBroker(config.Broker).
		SetClientID(config.ClientID).
		SetKeepAlive(30 * time.Second).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logging.Warn("MQTT connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(client paho.Client) {
			// Resubscribe on every (re)connect
			if token := client.Subscribe(in.topic, 0, in.handleMessage); token.Wait() && token.Error() != nil {
				logging.Error("MQTT subscribe failed",
					zap.String("topic", in.topic),
					zap.Error(token.Error()),
				)
				return
			}
			logging.Info("MQTT intake subscribed",
				zap.String("broker", config.Broker),
				zap.String("topic", in.topic),
			)
		})

	in.client = paho.NewClient(opts)
	token := in.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("mqtt: connect to %s: timeout", config.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: connect to %s: %w", config.Broker, err)
	}

	return in, nil
}

// handleMessage validates one published payload and produces it onto the
// bus. Invalid payloads are logged and dropped; MQTT has no reply channel.
func (in *Intake) handleMessage(_ paho.Client, msg paho.Message) {
	cmd, err := in.validator.Decode(msg.Payload())
	if err != nil {
		logging.Warn("Rejected MQTT color command",
			zap.String("topic", msg.Topic()),
			zap.Int("bytes", len(msg.Payload())),
			zap.Error(err),
		)
		return
	}

	if err := in.bus.Send(cmd); err != nil {
		if errors.Is(err, pixelbus.ErrClosed) {
			logging.Warn("Dropping MQTT command, pixel queue closed")
			return
		}
		logging.Error("Failed to queue MQTT command", zap.Error(err))
		return
	}

	logging.Info("Applied color command",
		zap.String("topic", msg.Topic()),
		zap.String("transport", "mqtt"),
		zap.Int("pixels", len(cmd)),
	)
}

// Close unsubscribes and disconnects from the broker.
func (in *Intake) Close() {
	if token := in.client.Unsubscribe(in.topic); token.Wait() && token.Error() != nil {
		logging.Warn("MQTT unsubscribe failed", zap.Error(token.Error()))
	}
	in.client.Disconnect(250)
}
