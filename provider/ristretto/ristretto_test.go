package ristretto

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/docache/provider/providertest"
)

func newTestProvider(t *testing.T, costBySize bool) *Provider {
	t.Helper()
	p, err := New(Config{NumCounters: 1e4, MaxCost: 1 << 20, BufferItems: 64, CostBySize: costBySize})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p
}

func TestRistrettoConformance(t *testing.T) {
	providertest.Run(t, newTestProvider(t, false))
}

func TestRistrettoConformanceCostBySize(t *testing.T) {
	providertest.Run(t, newTestProvider(t, true))
}

func TestRistrettoInvalidConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}
