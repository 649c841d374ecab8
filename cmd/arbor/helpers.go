package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/codec"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/file"
	"github.com/aretw0/arbor/pkg/adapters/llm"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	redisAdapter "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/metrics"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
	"golang.org/x/term"
)

// readDocument decodes the graph document at path; "-" reads stdin.
func readDocument(path string) (*codec.Document, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := codec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// documentID picks the explicit id, then the document metadata, then the file name.
func documentID(explicit, path string, doc *codec.Document) string {
	if explicit != "" {
		return explicit
	}
	if id := doc.ID(); id != "" {
		return id
	}
	if path == "-" {
		return ""
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// repairedMetadata copies meta with start_node_id following g.StartNode, so a
// start removed by the repair is not restored when the output is read back.
func repairedMetadata(meta map[string]string, g *domain.Graph) map[string]string {
	out := make(map[string]string, len(meta))
	for k, v := range meta {
		out[k] = v
	}
	switch {
	case g == nil || g.StartNode == "":
		delete(out, domain.KeyStartNodeID)
	case out[domain.KeyStartNodeID] != "":
		out[domain.KeyStartNodeID] = g.StartNode
	}
	return out
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// openStore builds the configured report store, wrapped with masking and
// encryption when configured. The returned close function is never nil.
func openStore(c config.Config) (ports.ReportStore, ports.DistributedLocker, func(), error) {
	var (
		store  ports.ReportStore
		locker ports.DistributedLocker
		closer = func() {}
	)

	switch c.Store.Driver {
	case config.DriverFile:
		store = file.New(c.Store.Dir)
	case config.DriverRedis:
		opts := []redisAdapter.Option{redisAdapter.WithTTL(c.Store.Redis.TTL)}
		if c.Store.Redis.Prefix != "" {
			opts = append(opts, redisAdapter.WithPrefix(c.Store.Redis.Prefix))
		}
		rs := redisAdapter.New(c.Store.Redis.Addr, c.Store.Redis.Password, c.Store.Redis.DB, opts...)
		store = rs
		locker = redisAdapter.NewLocker(rs.Client(), "arbor:")
		closer = func() {
			if err := rs.Close(); err != nil {
				logger.Warn("failed to close redis store", "error", err)
			}
		}
	default:
		store = memory.NewStore()
	}

	var mws []middleware.Middleware
	if len(c.Store.MaskKeys) > 0 {
		mws = append(mws, middleware.NewPIIMiddleware(c.Store.MaskKeys))
	}
	if c.Store.EncryptionKey != "" {
		key, err := middleware.ParseKey(c.Store.EncryptionKey)
		if err != nil {
			closer()
			return nil, nil, nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}

// newAdvisor returns the LLM advisor, or nil when offline or no key is set.
func newAdvisor(c config.Config, offline bool) (ports.RepairAdvisor, error) {
	if offline || c.Resolver.Offline {
		return nil, nil
	}
	if c.LLM.APIKey == "" {
		logger.Info("no LLM API key configured, semantic conflicts will stay unresolved")
		return nil, nil
	}
	return llm.New(llm.Config{
		APIKey:      c.LLM.APIKey,
		Model:       c.LLM.Model,
		BaseURL:     c.LLM.BaseURL,
		Temperature: c.LLM.Temperature,
		MaxTokens:   c.LLM.MaxTokens,
		Timeout:     c.LLM.Timeout,
	}, llm.WithLogger(logger))
}

// newEngine wires the engine from the loaded config. reg may be nil.
func newEngine(offline bool, reg *metrics.Registry) (*arbor.Engine, func(), error) {
	store, locker, closer, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	advisor, err := newAdvisor(cfg, offline)
	if err != nil {
		closer()
		return nil, nil, err
	}

	opts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithStore(store),
		arbor.WithTraversalConfig(cfg.Traversal),
		arbor.WithMinConfidence(cfg.Resolver.MinConfidence),
	}
	if advisor != nil {
		opts = append(opts, arbor.WithAdvisor(advisor))
	}
	if locker != nil {
		opts = append(opts, arbor.WithLocker(locker, cfg.Store.LockTTL))
	}
	if reg != nil {
		opts = append(opts, arbor.WithMetrics(reg))
	}
	return arbor.New(opts...), closer, nil
}

// runBatch analyzes or repairs every document under dir.
func runBatch(ctx context.Context, engine *arbor.Engine, dir string, repair bool) ([]arbor.BatchResult, error) {
	loader := file.NewLoader(dir)
	if repair {
		return engine.RepairAll(ctx, loader, cfg.Batch.Concurrency)
	}
	return engine.AnalyzeAll(ctx, loader, cfg.Batch.Concurrency)
}
