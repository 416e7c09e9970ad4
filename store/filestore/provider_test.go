package filestore

import (
	"context"

	pr "github.com/unkn0wn-root/docache/provider"
)

type mapProvider struct{ m map[string][]byte }

func newMapProvider() *mapProvider { return &mapProvider{m: map[string][]byte{}} }

func (p *mapProvider) Exec(_ context.Context, ops []pr.Op) ([]pr.Result, error) {
	out := make([]pr.Result, len(ops))
	for i, op := range ops {
		switch op.Kind {
		case pr.OpGet:
			v, ok := p.m[op.Key]
			out[i] = pr.Result{Value: v, Found: ok}
		case pr.OpSet:
			p.m[op.Key] = op.Value
		case pr.OpDel:
			delete(p.m, op.Key)
		}
	}
	return out, nil
}

func (p *mapProvider) Close(context.Context) error { return nil }
