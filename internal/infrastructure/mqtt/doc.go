// Package mqtt provides MQTT client connectivity for Gift Relay Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Gift Relay uses MQTT as the message bus between the external stream
// connector and the core. The connector publishes gift and connect
// notifications; the core subscribes, dispatches relay commands, and
// mirrors dispatched commands back onto the bus for observers.
//
//	Stream Connector → MQTT Broker → Gift Relay Core → Relay Controller
//	                       ↑                │
//	                       └── command/sent ┘
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to gift events
//	err = client.Subscribe(mqtt.Topics{}.EventGift("nyala_live"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Mirror a dispatched command
//	topic := mqtt.Topics{}.CommandSent()
//	client.Publish(topic, []byte(`{"relay":"relay1nyala","waktu":2}`), 1, false)
package mqtt
