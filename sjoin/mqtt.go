package sjoin

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// connectTimeout bounds the initial broker connection attempt.
const connectTimeout = 10 * time.Second

// ConnectMQTT connects to the broker described by the config and returns a
// ready client. The caller owns the client and should Disconnect it when
// done.
func ConnectMQTT(cfg *MQTTConfig) (mqtt.Client, error) {
	if cfg == nil || cfg.Broker == "" {
		return nil, fmt.Errorf("mqtt broker not configured")
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("dedupjoin-%d", time.Now().Unix())
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(false)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("MQTT connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("connecting to %s: timeout after %s", cfg.Broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Broker, err)
	}

	log.Printf("Connected to MQTT broker %s as %s", cfg.Broker, clientID)
	return client, nil
}
