package sjoin

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Publisher publishes join results to MQTT for live map consumers. The
// aggregated result goes out as a retained GeoJSON FeatureCollection so a
// late-joining subscriber immediately sees the latest table.
type Publisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	retain bool
}

// NewPublisher creates a result publisher. If prefix is empty, "dedupjoin"
// is used.
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = "dedupjoin"
	}
	return &Publisher{
		client: client,
		prefix: prefix,
		qos:    0,
		retain: true,
	}
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2).
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker.
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}

// PublishResult publishes the aggregated table as GeoJSON to the
// "{prefix}/result" topic.
func (p *Publisher) PublishResult(result *AggregatedTable) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	payload, err := json.Marshal(result.ToFeatureCollection())
	if err != nil {
		return fmt.Errorf("marshaling result GeoJSON: %w", err)
	}

	topic := fmt.Sprintf("%s/result", p.prefix)
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published %d aggregated rows to %s", len(result.Rows), topic)
	return nil
}

// PublishSummary publishes a compact row-count summary to the
// "{prefix}/summary" topic.
func (p *Publisher) PublishSummary(pairs *PairTable, result *AggregatedTable) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	summary := map[string]interface{}{
		"pairRows":       len(pairs.Rows),
		"aggregatedRows": len(result.Rows),
		"geometryArity":  result.GeometryArity,
		"timestamp":      time.Now().Unix(),
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	topic := fmt.Sprintf("%s/summary", p.prefix)
	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}
