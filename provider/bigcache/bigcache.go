package bigcache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	bc "github.com/allegro/bigcache/v3"

	pr "github.com/unkn0wn-root/docache/provider"
)

// defaultLifeWindow is long enough that entries effectively never expire;
// docache entries live until overwritten or deleted.
const defaultLifeWindow = 10 * 365 * 24 * time.Hour

// Provider runs batches against an in-process BigCache.
type Provider struct {
	mu sync.Mutex
	c  *bc.BigCache
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	LifeWindow         time.Duration // 0 => effectively never
	CleanWindow        time.Duration // 0 => no background cleanup
	Shards             int
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(cfg Config) (*Provider, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = defaultLifeWindow
	}
	conf := bc.DefaultConfig(life)
	conf.CleanWindow = cfg.CleanWindow
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &Provider{c: c}, nil
}

func (p *Provider) Exec(_ context.Context, ops []pr.Op) ([]pr.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]pr.Result, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case pr.OpGet:
			b, err := p.c.Get(op.Key)
			if errors.Is(err, bc.ErrEntryNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			out[i] = pr.Result{Value: b, Found: true}
		case pr.OpSet:
			if err := p.c.Set(op.Key, op.Value); err != nil {
				return nil, err
			}
		case pr.OpDel:
			err := p.c.Delete(op.Key)
			if err != nil && !errors.Is(err, bc.ErrEntryNotFound) {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("%w: %d", pr.ErrUnknownOp, op.Kind)
		}
	}
	return out, nil
}

func (p *Provider) Close(_ context.Context) error {
	return p.c.Close()
}
