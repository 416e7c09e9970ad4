package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	pr "github.com/unkn0wn-root/docache/provider"
	"github.com/unkn0wn-root/docache/provider/providertest"
)

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	p, err := New(Config{Client: rdb, CloseClient: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close(context.Background()) })
	return p, mr
}

func TestRedisConformance(t *testing.T) {
	p, _ := newTestRedis(t)
	providertest.Run(t, p)
}

func TestRedisNilClient(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNilClient)
}

func TestRedisSetHasNoExpiry(t *testing.T) {
	p, mr := newTestRedis(t)
	ctx := context.Background()

	_, err := p.Exec(ctx, []pr.Op{pr.Set("entry:id1", []byte(`{"_id":"id1"}`))})
	require.NoError(t, err)

	require.Equal(t, `{"_id":"id1"}`, mustGet(t, mr, "entry:id1"))
	require.Zero(t, mr.TTL("entry:id1"))
}

func TestRedisBatchIsOneTransaction(t *testing.T) {
	p, mr := newTestRedis(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("entry:id1", "old"))

	res, err := p.Exec(ctx, []pr.Op{
		pr.Get("entry:id1"),
		pr.Set("entry:id1", []byte("new")),
		pr.Get("entry:id1"),
	})
	require.NoError(t, err)
	require.Equal(t, []byte("old"), res[0].Value)
	require.Equal(t, []byte("new"), res[2].Value)
}

func TestRedisTransportError(t *testing.T) {
	p, mr := newTestRedis(t)
	mr.Close()

	_, err := p.Exec(context.Background(), []pr.Op{pr.Get("entry:id1")})
	require.Error(t, err)
}

func TestRedisCloseIdempotent(t *testing.T) {
	p, _ := newTestRedis(t)
	require.NoError(t, p.Close(context.Background()))
	require.NoError(t, p.Close(context.Background()))
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}
