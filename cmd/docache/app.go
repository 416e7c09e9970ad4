package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/docache"
	"github.com/unkn0wn-root/docache/codec"
	asynchook "github.com/unkn0wn-root/docache/hooks/async"
	sloghook "github.com/unkn0wn-root/docache/hooks/slog"
	zaplog "github.com/unkn0wn-root/docache/log/zap"
	pr "github.com/unkn0wn-root/docache/provider"
	bcp "github.com/unkn0wn-root/docache/provider/bigcache"
	redisp "github.com/unkn0wn-root/docache/provider/redis"
	rcp "github.com/unkn0wn-root/docache/provider/ristretto"
	"github.com/unkn0wn-root/docache/store/filestore"
	mongostore "github.com/unkn0wn-root/docache/store/mongo"
)

type app struct {
	eng      docache.Engine[docache.Doc]
	files    *filestore.Store // nil unless store.kind is file
	dispatch *asynchook.Dispatcher
	closers  []func(context.Context) error
}

func open(ctx context.Context, cfg Config, zl *zap.Logger, disable bool) (*app, error) {
	a := &app{}
	p, err := newProvider(cfg.Cache)
	if err != nil {
		return nil, err
	}

	store, err := a.newStore(ctx, cfg.Store, cfg.PrimaryKey)
	if err != nil {
		_ = p.Close(ctx)
		_ = a.close(ctx)
		return nil, err
	}

	cd, err := newCodec(cfg.Cache)
	if err != nil {
		_ = p.Close(ctx)
		_ = a.close(ctx)
		return nil, err
	}

	level := slog.LevelWarn
	if zl.Core().Enabled(zap.DebugLevel) {
		level = slog.LevelDebug
	}
	misses := sloghook.New(
		slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})),
		sloghook.Options{Redact: func(k string) string { return k }},
	)
	a.dispatch = asynchook.New(1, 256)

	eng, err := docache.New[docache.Doc](docache.Options[docache.Doc]{
		Entity:         cfg.Entity,
		Provider:       p,
		Store:          store,
		PrimaryKey:     cfg.PrimaryKey,
		AdditionalKeys: cfg.AdditionalKeys,
		Codec:          cd,
		Logger:         zaplog.New(zl),
		Disabled:       disable || !cfg.enabled(),
		SelfHeal:       cfg.SelfHeal,
		OnCacheMiss:    a.dispatch.Wrap(misses.CacheMiss),
		OnDataMiss:     a.dispatch.Wrap(misses.DataMiss),
	})
	if err != nil {
		_ = p.Close(ctx)
		_ = a.close(ctx)
		return nil, err
	}
	a.eng = eng
	return a, nil
}

func newProvider(cfg CacheConfig) (pr.Provider, error) {
	switch cfg.Kind {
	case "redis":
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.Addr,
			Username: cfg.Username,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return redisp.New(redisp.Config{Client: rdb, CloseClient: true})
	case "ristretto":
		maxCost := cfg.MaxCost
		if maxCost <= 0 {
			maxCost = 64 << 20
		}
		return rcp.New(rcp.Config{NumCounters: 1e6, MaxCost: maxCost, BufferItems: 64, CostBySize: true})
	case "bigcache":
		return bcp.New(bcp.Config{HardMaxCacheSizeMB: int(cfg.MaxCost >> 20)})
	default:
		return nil, fmt.Errorf("unknown cache kind %q", cfg.Kind)
	}
}

func newCodec(cfg CacheConfig) (codec.Codec[docache.Doc], error) {
	var cd codec.Codec[docache.Doc]
	switch cfg.Codec {
	case "", "json":
		cd = codec.JSON[docache.Doc]{UseNumber: true}
	case "msgpack":
		cd = codec.Msgpack[docache.Doc]{}
	case "cbor":
		c, err := codec.NewCBOR[docache.Doc]()
		if err != nil {
			return nil, err
		}
		cd = c
	default:
		return nil, fmt.Errorf("unknown codec %q", cfg.Codec)
	}
	if cfg.MaxPayload > 0 {
		cd = codec.Limit[docache.Doc]{Inner: cd, MaxDecode: cfg.MaxPayload}
	}
	return cd, nil
}

func (a *app) newStore(ctx context.Context, cfg StoreConfig, pk string) (docache.Store[docache.Doc], error) {
	switch cfg.Kind {
	case "file":
		fs, err := filestore.Open(cfg.Path, pk)
		if err != nil {
			return nil, err
		}
		a.files = fs
		return fs, nil
	case "mongo":
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Disconnect)
		return mongostore.NewDocs(mongostore.Config{
			Collection:     client.Database(cfg.Database).Collection(cfg.Collection),
			ObjectIDFields: cfg.ObjectIDFields,
		})
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

// close flushes queued miss events, then releases the cache and store.
func (a *app) close(ctx context.Context) error {
	if a.dispatch != nil {
		a.dispatch.Close()
	}
	var errs []error
	if a.eng != nil {
		errs = append(errs, a.eng.Close(ctx))
	}
	for _, c := range a.closers {
		errs = append(errs, c(ctx))
	}
	return errors.Join(errs...)
}
