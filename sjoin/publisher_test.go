package sjoin

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_PublishResult(t *testing.T) {
	_, result := demoResult(t, PredicateIntersects)

	client := NewMockClient()
	client.SetConnected(true)

	p := NewPublisher(client, "test")
	err := p.PublishResult(result)
	require.NoError(t, err)

	msgs := client.GetPublishedMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "test/result", msgs[0].Topic)
	assert.True(t, msgs[0].Retain, "result should be retained for late subscribers")

	var fc FeatureCollection
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	assert.Len(t, fc.Features, len(result.Rows))
}

func TestPublisher_PublishResult_NotConnected(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(false)

	_, result := demoResult(t, PredicateWithin)

	p := NewPublisher(client, "test")
	err := p.PublishResult(result)
	assert.Error(t, err)
	assert.Empty(t, client.GetPublishedMessages())
}

func TestPublisher_PublishResult_PublishError(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)
	client.SetPublishError(errors.New("broker rejected"))

	_, result := demoResult(t, PredicateWithin)

	p := NewPublisher(client, "test")
	err := p.PublishResult(result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "broker rejected")
}

func TestPublisher_PublishSummary(t *testing.T) {
	pairs, result := demoResult(t, PredicateIntersects)

	client := NewMockClient()
	client.SetConnected(true)

	p := NewPublisher(client, "test")
	require.NoError(t, p.PublishSummary(pairs, result))

	msgs := client.GetPublishedMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "test/summary", msgs[0].Topic)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &summary))
	assert.Equal(t, float64(9), summary["pairRows"])
	assert.Equal(t, float64(7), summary["aggregatedRows"])
	assert.Equal(t, float64(2), summary["geometryArity"])
	assert.Contains(t, summary, "timestamp")
}

func TestPublisher_DefaultPrefix(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)

	_, result := demoResult(t, PredicateWithin)

	p := NewPublisher(client, "")
	require.NoError(t, p.PublishResult(result))

	msgs := client.GetPublishedMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "dedupjoin/result", msgs[0].Topic)
}

func TestPublisher_QoSAndRetain(t *testing.T) {
	client := NewMockClient()
	client.SetConnected(true)

	_, result := demoResult(t, PredicateWithin)

	p := NewPublisher(client, "test")
	p.SetQoS(1)
	p.SetRetain(false)
	require.NoError(t, p.PublishResult(result))

	msgs := client.GetPublishedMessages()
	require.Len(t, msgs, 1)
	assert.Equal(t, byte(1), msgs[0].QoS)
	assert.False(t, msgs[0].Retain)

	// Out-of-range QoS is ignored.
	p.SetQoS(5)
	require.NoError(t, p.PublishResult(result))
	msgs = client.GetPublishedMessages()
	assert.Equal(t, byte(1), msgs[1].QoS)
}
