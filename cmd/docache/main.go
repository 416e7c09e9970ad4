// Command docache reads, writes and invalidates cached documents from the
// shell.
//
//	docache -c docache.jsonc get id1 id3
//	docache get-by slug slug3
//	docache put '{"_id":"id7","slug":"seven","title":"Lost"}'
//	docache delete id7
//	docache clear id1 id3 id5
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/docache"
)

const usage = `usage: docache [flags] <command> [args]

commands:
  get <id>...              read by primary key
  get-by <field> <key>...  read by primary or additional key field
  put <json>...            upsert documents into the file store and cache
  delete <id>...           remove documents from the file store and cache
  clear <id>...            drop primary-key cache entries

flags:
`

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("docache", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	cfgPath := flags.StringP("config", "c", "docache.jsonc", "config file (JSONC)")
	debug := flags.Bool("debug", false, "enable debug logging")
	disable := flags.Bool("disable", false, "bypass the cache for reads and writes")
	flags.Usage = func() {
		fmt.Fprint(stderr, usage)
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	rest := flags.Args()
	if len(rest) == 0 {
		flags.Usage()
		return 2
	}

	cfg, err := loadConfig(*cfgPath)
	if err != nil {
		fmt.Fprintln(stderr, "docache:", err)
		return 1
	}

	zl, err := newZap(*debug)
	if err != nil {
		fmt.Fprintln(stderr, "docache:", err)
		return 1
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, err := open(ctx, cfg, zl, *disable)
	if err != nil {
		fmt.Fprintln(stderr, "docache:", err)
		return 1
	}
	err = a.exec(ctx, rest[0], rest[1:], stdout)
	if cerr := a.close(context.Background()); err == nil {
		err = cerr
	}
	switch {
	case errors.Is(err, errUsage):
		flags.Usage()
		return 2
	case err != nil:
		fmt.Fprintln(stderr, "docache:", err)
		return 1
	}
	return 0
}

func newZap(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.OutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	return cfg.Build()
}

func (a *app) exec(ctx context.Context, cmd string, args []string, out io.Writer) error {
	switch cmd {
	case "get":
		if len(args) == 0 {
			return errUsage
		}
		res, err := a.eng.GetMany(ctx, args)
		if err != nil {
			return err
		}
		return printDocs(out, res)
	case "get-by":
		if len(args) < 2 {
			return errUsage
		}
		res, err := a.eng.GetManyBy(ctx, args[0], args[1:])
		if err != nil {
			return err
		}
		return printDocs(out, res)
	case "put":
		if len(args) == 0 {
			return errUsage
		}
		if a.files == nil {
			return errors.New("put needs a file store")
		}
		return applyEach(args, func(raw string) (docache.Doc, bool, error) {
			d, err := parseDoc(raw)
			if err != nil {
				return nil, false, err
			}
			if err := a.files.Put(ctx, d); err != nil {
				return nil, false, err
			}
			return d, true, nil
		}, func(docs []docache.Doc) error {
			return a.eng.Saved(ctx, docs...)
		})
	case "delete":
		if len(args) == 0 {
			return errUsage
		}
		if a.files == nil {
			return errors.New("delete needs a file store")
		}
		return applyEach(args, func(id string) (docache.Doc, bool, error) {
			return a.files.Delete(ctx, id)
		}, func(docs []docache.Doc) error {
			return a.eng.Removed(ctx, docs...)
		})
	case "clear":
		if len(args) == 0 {
			return errUsage
		}
		return a.eng.ClearMany(ctx, args)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

// applyEach runs step over args in order and stops at the first error. The
// documents changed so far are always handed to sync so the cache follows
// the store even when the batch fails partway.
func applyEach(args []string, step func(string) (docache.Doc, bool, error), sync func([]docache.Doc) error) error {
	var done []docache.Doc
	var err error
	for _, arg := range args {
		var d docache.Doc
		var ok bool
		if d, ok, err = step(arg); err != nil {
			break
		}
		if ok {
			done = append(done, d)
		}
	}
	if len(done) > 0 {
		err = errors.Join(err, sync(done))
	}
	return err
}

func parseDoc(raw string) (docache.Doc, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var d docache.Doc
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	if d == nil {
		return nil, errors.New("parse document: not an object")
	}
	return d, nil
}

// printDocs writes one JSON line per result; absent records print null.
func printDocs(w io.Writer, docs []*docache.Doc) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, d := range docs {
		var v any
		if d != nil {
			v = *d
		}
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return nil
}
