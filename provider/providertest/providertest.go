// Package providertest is a conformance suite for provider.Provider
// implementations.
package providertest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/docache/provider"
)

// Run exercises p with the batch semantics every provider must honor.
// p must start empty.
func Run(t *testing.T, p pr.Provider) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetMissing", func(t *testing.T) {
		res, err := p.Exec(ctx, []pr.Op{pr.Get("pt:absent")})
		require.NoError(t, err)
		require.Len(t, res, 1)
		require.False(t, res[0].Found)
		require.Nil(t, res[0].Value)
	})

	t.Run("SetThenGetInOrder", func(t *testing.T) {
		_, err := p.Exec(ctx, []pr.Op{
			pr.Set("pt:a", []byte(`{"_id":"a"}`)),
			pr.Set("pt:b", []byte(`{"_id":"b"}`)),
		})
		require.NoError(t, err)

		res, err := p.Exec(ctx, []pr.Op{
			pr.Get("pt:b"),
			pr.Get("pt:nope"),
			pr.Get("pt:a"),
			pr.Get("pt:b"),
		})
		require.NoError(t, err)
		require.Len(t, res, 4)
		require.Equal(t, []byte(`{"_id":"b"}`), res[0].Value)
		require.False(t, res[1].Found)
		require.Equal(t, []byte(`{"_id":"a"}`), res[2].Value)
		require.True(t, res[3].Found)
	})

	t.Run("Overwrite", func(t *testing.T) {
		_, err := p.Exec(ctx, []pr.Op{pr.Set("pt:o", []byte("1"))})
		require.NoError(t, err)
		_, err = p.Exec(ctx, []pr.Op{pr.Set("pt:o", []byte("2"))})
		require.NoError(t, err)

		res, err := p.Exec(ctx, []pr.Op{pr.Get("pt:o")})
		require.NoError(t, err)
		require.Equal(t, []byte("2"), res[0].Value)
	})

	t.Run("DeleteIncludingAbsent", func(t *testing.T) {
		_, err := p.Exec(ctx, []pr.Op{pr.Set("pt:d", []byte("x"))})
		require.NoError(t, err)

		_, err = p.Exec(ctx, []pr.Op{pr.Del("pt:d"), pr.Del("pt:never-set")})
		require.NoError(t, err)

		res, err := p.Exec(ctx, []pr.Op{pr.Get("pt:d")})
		require.NoError(t, err)
		require.False(t, res[0].Found)
	})

	t.Run("MixedBatch", func(t *testing.T) {
		res, err := p.Exec(ctx, []pr.Op{
			pr.Set("pt:m", []byte("v")),
			pr.Get("pt:m"),
			pr.Del("pt:m"),
			pr.Get("pt:m"),
		})
		require.NoError(t, err)
		require.Len(t, res, 4)
		require.True(t, res[1].Found)
		require.Equal(t, []byte("v"), res[1].Value)
		require.False(t, res[3].Found)
	})

	t.Run("ValueNotAliased", func(t *testing.T) {
		buf := []byte("orig")
		_, err := p.Exec(ctx, []pr.Op{pr.Set("pt:alias", buf)})
		require.NoError(t, err)
		buf[0] = 'X'

		res, err := p.Exec(ctx, []pr.Op{pr.Get("pt:alias")})
		require.NoError(t, err)
		require.Equal(t, []byte("orig"), res[0].Value)
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		res, err := p.Exec(ctx, nil)
		require.NoError(t, err)
		require.Empty(t, res)
	})

	t.Run("UnknownOp", func(t *testing.T) {
		_, err := p.Exec(ctx, []pr.Op{{Kind: 99, Key: "pt:x"}})
		require.ErrorIs(t, err, pr.ErrUnknownOp)
	})
}
