// offcache-demo resolves item ids through an offcache.Cache backed by
// SQLite, fetching misses from a JSON HTTP endpoint while it is
// reachable:
//
//	OFFCACHE_REMOTE_URL=https://api.example.com/items offcache-demo a b c
//
// The remote endpoint is expected to answer GET <url>?ids=a,b,c with a
// JSON array of items.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/offcache"
	"github.com/unkn0wn-root/offcache/codec"
	zaplog "github.com/unkn0wn-root/offcache/log/zap"
	"github.com/unkn0wn-root/offcache/reach"
	"github.com/unkn0wn-root/offcache/store/sqlite"
)

type config struct {
	DBPath        string        `env:"OFFCACHE_DB" envDefault:"offcache.db"`
	RemoteURL     string        `env:"OFFCACHE_REMOTE_URL,required"`
	ProbeURL      string        `env:"OFFCACHE_PROBE_URL"`
	ProbeInterval time.Duration `env:"OFFCACHE_PROBE_INTERVAL" envDefault:"30s"`
	TTL           time.Duration `env:"OFFCACHE_TTL" envDefault:"5m"`
}

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "offcache-demo: %v\n", err)
		os.Exit(1)
	}
}

func run(ids []string) error {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if len(ids) == 0 {
		return fmt.Errorf("usage: offcache-demo <id> [id...]")
	}

	zl, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer zl.Sync()

	st, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	// Probe the remote itself unless a dedicated probe URL is given.
	probeURL := cfg.ProbeURL
	if probeURL == "" {
		probeURL = cfg.RemoteURL
	}
	monitor := reach.NewMonitor(reach.HTTPProber{URL: probeURL}, cfg.ProbeInterval)
	defer monitor.Close()

	cache, err := offcache.New[item](offcache.Options[item]{
		Kind: offcache.Kind[item]{
			Prefix: "items",
			TTL:    cfg.TTL,
			KeyOf:  func(it item) string { return it.ID },
			Fetch:  fetchItems(cfg.RemoteURL),
		},
		Store:        st,
		Codec:        codec.JSON[item]{},
		Connectivity: monitor.Status(),
		Logger:       zaplog.Logger{L: zl},
	})
	if err != nil {
		return err
	}
	defer cache.Close(context.Background())

	it := cache.GetItems(context.Background(), ids)
	for it.Next() {
		v := it.Item()
		fmt.Printf("%s\t%s\n", v.ID, v.Name)
	}
	return it.Err()
}

// fetchItems builds a FetchFunc that GETs the remote endpoint and
// streams the decoded array.
func fetchItems(remoteURL string) offcache.FetchFunc[item] {
	return func(ctx context.Context, ids []string) (<-chan item, error) {
		u, err := url.Parse(remoteURL)
		if err != nil {
			return nil, err
		}
		q := u.Query()
		q.Set("ids", strings.Join(ids, ","))
		u.RawQuery = q.Encode()

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("remote returned %s", resp.Status)
		}

		var items []item
		if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
			return nil, fmt.Errorf("decode remote response: %w", err)
		}

		out := make(chan item)
		go func() {
			defer close(out)
			for _, v := range items {
				select {
				case out <- v:
				case <-ctx.Done():
					return
				}
			}
		}()
		return out, nil
	}
}
