package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	pr "github.com/unkn0wn-root/docache/provider"
)

var ErrNilClient = errors.New("redis provider: nil client")

// Redis runs each batch as a MULTI/EXEC transaction in one round trip.
type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var _ pr.Provider = (*Redis)(nil)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this provider exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func (p *Redis) Exec(ctx context.Context, ops []pr.Op) ([]pr.Result, error) {
	if len(ops) == 0 {
		return nil, nil
	}
	cmds := make([]goredis.Cmder, len(ops))
	_, err := p.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		for i, op := range ops {
			switch op.Kind {
			case pr.OpGet:
				cmds[i] = pipe.Get(ctx, op.Key)
			case pr.OpSet:
				// no expiry: entries live until overwritten or deleted
				cmds[i] = pipe.Set(ctx, op.Key, op.Value, 0)
			case pr.OpDel:
				cmds[i] = pipe.Del(ctx, op.Key)
			default:
				return fmt.Errorf("%w: %d", pr.ErrUnknownOp, op.Kind)
			}
		}
		return nil
	})
	// a nil reply on GET surfaces as goredis.Nil from Exec; that is a miss
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, err
	}

	out := make([]pr.Result, len(ops))
	for i, op := range ops {
		if err := cmds[i].Err(); err != nil {
			if errors.Is(err, goredis.Nil) {
				continue
			}
			return nil, err
		}
		if op.Kind != pr.OpGet {
			continue
		}
		b, err := cmds[i].(*goredis.StringCmd).Bytes()
		if err != nil {
			return nil, err
		}
		out[i] = pr.Result{Value: b, Found: true}
	}
	return out, nil
}

// Close releases the underlying redis client only when this provider owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
