package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashEmbedder_Deterministic(t *testing.T) {
	e := NewHashEmbedder(64)

	a, err := e.EmbedStrings(context.Background(), []string{"consensus protocols in distributed systems"})
	assert.NoError(t, err)
	b, err := e.EmbedStrings(context.Background(), []string{"consensus protocols in distributed systems"})
	assert.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestHashEmbedder_DimensionAndNorm(t *testing.T) {
	e := NewHashEmbedder(128)
	assert.Equal(t, 128, e.Dimension())

	vecs, err := e.EmbedStrings(context.Background(), []string{"quorum replication with leader election"})
	assert.NoError(t, err)

	if assert.Len(t, vecs, 1) {
		assert.Len(t, vecs[0], 128)

		var norm float64
		for _, v := range vecs[0] {
			norm += v * v
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	}
}

func TestHashEmbedder_EmptyTextYieldsZeroVector(t *testing.T) {
	e := NewHashEmbedder(16)

	vecs, err := e.EmbedStrings(context.Background(), []string{"   "})
	assert.NoError(t, err)

	if assert.Len(t, vecs, 1) {
		for _, v := range vecs[0] {
			assert.Zero(t, v)
		}
	}
}

func TestHashEmbedder_DefaultDimension(t *testing.T) {
	assert.Equal(t, 1536, NewHashEmbedder(0).Dimension())
}

func TestHashEmbedder_RespectsCancelledContext(t *testing.T) {
	e := NewHashEmbedder(16)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.EmbedStrings(ctx, []string{"anything"})
	assert.ErrorIs(t, err, context.Canceled)
}
