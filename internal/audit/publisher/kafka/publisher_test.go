package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"sbos/internal/audit"
)

type recordingProducer struct {
	records []*kgo.Record
	err     error
}

func (p *recordingProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	out := make(kgo.ProduceResults, 0, len(rs))
	for _, r := range rs {
		p.records = append(p.records, r)
		out = append(out, kgo.ProduceResult{Record: r, Err: p.err})
	}
	return out
}

func TestPublisher(t *testing.T) {
	t.Run("keys by instance and encodes envelope", func(t *testing.T) {
		prod := &recordingProducer{}
		pub, err := NewPublisher(prod, "sbos.audit")
		require.NoError(t, err)

		env := audit.Envelope{Kind: audit.KindShadow, Shadow: &audit.ShadowFinding{
			InstanceID: "comfort-1700000000000", PointLabel: "F1_ZoneA_Cool_SP", ValidatorType: "comfort_band",
		}}
		require.NoError(t, pub.Publish(context.Background(), env))

		require.Len(t, prod.records, 1)
		rec := prod.records[0]
		assert.Equal(t, "sbos.audit", rec.Topic)
		assert.Equal(t, "comfort-1700000000000", string(rec.Key))
		assert.Equal(t, "shadow", string(rec.Headers[0].Value))

		var decoded audit.Envelope
		require.NoError(t, json.Unmarshal(rec.Value, &decoded))
		assert.Equal(t, "comfort_band", decoded.Shadow.ValidatorType)
		assert.Nil(t, decoded.Transaction)
	})

	t.Run("surfaces produce errors", func(t *testing.T) {
		pub, err := NewPublisher(&recordingProducer{err: errors.New("broker down")}, "sbos.audit")
		require.NoError(t, err)
		err = pub.Publish(context.Background(), audit.Envelope{Kind: audit.KindTransaction, Transaction: &audit.Transaction{}})
		assert.ErrorContains(t, err, "broker down")
	})

	t.Run("requires producer and topic", func(t *testing.T) {
		_, err := NewPublisher(nil, "t")
		assert.Error(t, err)
		_, err = NewPublisher(&recordingProducer{}, "")
		assert.Error(t, err)
	})
}
