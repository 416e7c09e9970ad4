package ristretto

import (
	"context"
	"errors"
	"fmt"
	"sync"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/docache/provider"
)

// Provider runs batches against an in-process ristretto cache.
// Batches are serialized so a batch is applied as a unit with respect to
// other batches on the same Provider. Ristretto may refuse admission under
// pressure; a refused SET reads back as a miss.
type Provider struct {
	mu         sync.Mutex
	c          *rc.Cache
	costBySize bool
}

var _ pr.Provider = (*Provider)(nil)

type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
	Metrics     bool
	// CostBySize charges len(value) per entry; otherwise every entry costs 1.
	CostBySize bool
}

func New(cfg Config) (*Provider, error) {
	if cfg.NumCounters <= 0 || cfg.MaxCost <= 0 || cfg.BufferItems <= 0 {
		return nil, errors.New("ristretto: invalid config")
	}
	c, err := rc.NewCache(&rc.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     cfg.Metrics,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{c: c, costBySize: cfg.CostBySize}, nil
}

func (p *Provider) Exec(_ context.Context, ops []pr.Op) ([]pr.Result, error) {
	for _, op := range ops {
		if op.Kind < pr.OpGet || op.Kind > pr.OpDel {
			return nil, fmt.Errorf("%w: %d", pr.ErrUnknownOp, op.Kind)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]pr.Result, len(ops))
	pending := false
	for i, op := range ops {
		switch op.Kind {
		case pr.OpGet:
			if pending {
				// make buffered sets of this batch visible to its own reads
				p.c.Wait()
				pending = false
			}
			out[i] = p.get(op.Key)
		case pr.OpSet:
			v := append([]byte(nil), op.Value...)
			p.c.Set(op.Key, v, p.cost(v))
			pending = true
		case pr.OpDel:
			if pending {
				p.c.Wait()
				pending = false
			}
			p.c.Del(op.Key)
		}
	}
	if pending {
		p.c.Wait()
	}
	return out, nil
}

func (p *Provider) get(key string) pr.Result {
	v, ok := p.c.Get(key)
	if !ok {
		return pr.Result{}
	}
	b, _ := v.([]byte)
	if b == nil {
		// self-heal: drop unexpected entry shape
		p.c.Del(key)
		return pr.Result{}
	}
	return pr.Result{Value: b, Found: true}
}

func (p *Provider) cost(v []byte) int64 {
	if p.costBySize && len(v) > 0 {
		return int64(len(v))
	}
	return 1
}

func (p *Provider) Close(_ context.Context) error {
	p.c.Wait()
	p.c.Close()
	return nil
}

// Helper to expose metrics if desired by the application (not part of provider.Provider).
func (p *Provider) Metrics() *rc.Metrics { return p.c.Metrics }
