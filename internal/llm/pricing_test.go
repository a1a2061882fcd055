package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupCost(t *testing.T) {
	for _, id := range []string{"gemini-2.5-flash", "google/gemini-2.5-flash", "models/gemini-2.5-flash"} {
		c := LookupCost(id)
		require.NotNil(t, c, id)
		assert.Equal(t, ModelCost{0.3, 2.5}, *c, id)
	}
	assert.Nil(t, LookupCost("mock"))
	assert.Nil(t, LookupCost(""))
}

func TestModelCost(t *testing.T) {
	c := ModelCost{InputPerMTok: 0.3, OutputPerMTok: 2.5}
	assert.InDelta(t, 0.0003+0.0025, c.Cost(1000, 1000), 1e-12)
	assert.Zero(t, c.Cost(0, 0))
}
