// Command novastore is a small, local demonstration of the storage
// substrate: it brings up a buffer pool over a disk scheduler and a
// persistent trie, and exercises both with a handful of key/value
// operations so the wiring can be sanity-checked without a network
// front end.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/novadb/novastore/internal/bufferpool"
	"github.com/novadb/novastore/internal/config"
	"github.com/novadb/novastore/internal/diskio"
	"github.com/novadb/novastore/internal/storage"
	"github.com/novadb/novastore/pkg/trie"
)

func main() {
	var cfgPath string
	var workdir string
	flag.StringVar(&cfgPath, "config", "", "path to a YAML config file (optional)")
	flag.StringVar(&workdir, "workdir", "./data", "directory for page segment files")
	flag.Parse()

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			slog.Error("load config", "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := os.MkdirAll(workdir, storage.FileMode0755); err != nil {
		slog.Error("create workdir", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, workdir); err != nil {
		slog.Error("run", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, workdir string) error {
	sm := storage.NewStorageManager()
	fs := storage.LocalFileSet{Dir: workdir, Base: cfg.Storage.Base}
	gw := diskio.NewStorageGateway(sm, fs)
	sched := diskio.NewScheduler(gw, cfg.DiskScheduler.Workers)
	defer sched.Shutdown()

	pool := bufferpool.NewBufferPoolManager(sm, fs, sched, cfg.BufferPool.Capacity, cfg.BufferPool.K)

	guard, ok := pool.NewPageGuarded()
	if !ok {
		return fmt.Errorf("no frame available for new page")
	}
	pageID := guard.Page().PageID()
	if _, err := guard.Page().InsertTuple([]byte("hello, novastore")); err != nil {
		guard.Drop()
		return fmt.Errorf("insert tuple: %w", err)
	}
	guard.Drop()

	readGuard, ok := pool.FetchPageRead(pageID, bufferpool.AccessLookup)
	if !ok {
		return fmt.Errorf("fetch page %d", pageID)
	}
	data, err := readGuard.Page().ReadTuple(0)
	readGuard.Drop()
	if err != nil {
		return fmt.Errorf("read tuple: %w", err)
	}
	slog.Info("page round trip", "pageID", pageID, "tuple", string(data))

	kv := trie.New[string]()
	kv = kv.Put([]byte("greeting"), string(data))
	if v, ok := kv.Get([]byte("greeting")); ok {
		slog.Info("trie lookup", "key", "greeting", "value", v)
	}

	pool.FlushAllPages()
	return nil
}
