package docache

import (
	"context"
	"fmt"
)

const (
	eventCacheMiss = "cache_miss"
	eventDataMiss  = "data_miss"
)

// observer delivers miss events for one entity.
// With propagate unset, failures and panics are logged and dropped.
type observer struct {
	entity    string
	fn        MissFunc
	event     string
	propagate bool
	log       Logger
}

func (o observer) notify(ctx context.Context, key string) (err error) {
	if o.fn == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = o.fail(key, fmt.Errorf("panic: %v", r))
		}
	}()
	if ferr := o.fn(ctx, o.entity, key); ferr != nil {
		return o.fail(key, ferr)
	}
	return nil
}

func (o observer) fail(key string, err error) error {
	if o.propagate {
		return &ObserverError{Event: o.event, Entity: o.entity, Key: key, Err: err}
	}
	o.log.Warn("miss observer failed", Fields{"event": o.event, "entity": o.entity, "key": key, "err": err})
	return nil
}
