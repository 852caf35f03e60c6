package migrate

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cmsport/cmsport/internal/config"
	"github.com/cmsport/cmsport/internal/convert"
	"github.com/cmsport/cmsport/internal/graph"
	"github.com/cmsport/cmsport/internal/logger"
	"github.com/cmsport/cmsport/internal/resolve"
	"github.com/cmsport/cmsport/internal/source"
	"github.com/cmsport/cmsport/internal/state"
	"github.com/cmsport/cmsport/internal/target"
	"github.com/cmsport/cmsport/internal/transform"
)

// Result contains the statistics and status of one migration run.
type Result struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration
	Assets      state.Counters
	Entities    state.Counters
	Relations   state.Counters
	Identities  map[string]state.Identity
	AssetMap    map[string]int
	Errors      []state.ErrorEntry
	Order       []string
	Success     bool
}

// Orchestrator coordinates the content migration: assets first, then
// entities per type in priority order, then the deferred relationship pass.
type Orchestrator struct {
	cfg         *config.Config
	catalog     *convert.Catalog
	store       target.Store
	assets      AssetProvider
	state       *state.State
	transformer *transform.Transformer
	logger      *logger.Logger
}

// NewOrchestrator creates an orchestrator over the converted catalog and a
// target store.
func NewOrchestrator(cfg *config.Config, catalog *convert.Catalog, store target.Store, assets AssetProvider, log *logger.Logger) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is nil")
	}
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}

	st := state.New()

	return &Orchestrator{
		cfg:         cfg,
		catalog:     catalog,
		store:       store,
		assets:      assets,
		state:       st,
		transformer: transform.New(catalog, st, log),
		logger:      log,
	}, nil
}

// State exposes the run's accumulator, mainly for tests and reporting.
func (o *Orchestrator) State() *state.State {
	return o.state
}

// MigrationOrder computes the type processing order: independent types
// before dependent types. Ordering only reduces forward references; any
// remaining forward reference is still handled by the deferred relationship
// pass.
func MigrationOrder(catalog *convert.Catalog) []string {
	g := graph.New()
	for _, typeName := range catalog.TypeOrder {
		g.AddNode(typeName)
	}
	for _, typeName := range catalog.TypeOrder {
		ts := catalog.Schemas[typeName]
		for el := ts.Attributes.Front(); el != nil; el = el.Next() {
			attr := el.Value
			if attr.Kind != convert.KindRelation {
				continue
			}
			if attr.IsArrayRelation() {
				// Array relations are always deferred; ordering on them only
				// manufactures cycles (mutual many-to-many).
				continue
			}
			if attr.Target == typeName {
				continue // self-references cannot be ordered away
			}
			if _, known := catalog.Schemas[attr.Target]; known {
				g.AddEdge(attr.Target, typeName)
			}
		}
	}
	return g.Order()
}

// Run executes the full migration. It always completes through to a result
// unless the context is cancelled; per-document and per-relationship
// failures are recorded, never fatal.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	result := &Result{StartedAt: time.Now()}

	index, err := source.LoadAssetIndex(o.cfg.Source.AssetsIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets index: %w", err)
	}
	o.MigrateAssets(ctx, index)

	docs, err := source.ReadDocuments(o.cfg.Source.ExportPath, o.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	grouped := source.GroupByType(docs)

	order := MigrationOrder(o.catalog)
	result.Order = order
	o.logger.Infow("Migration order computed", "order", order)

	for _, typeName := range order {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := o.migrateType(ctx, typeName, grouped[typeName]); err != nil {
			return result, err
		}
	}

	// Exported types with no target schema still get failure accounting:
	// each of their documents is counted and logged, never silently dropped.
	var unknown []string
	for typeName := range grouped {
		if _, known := o.catalog.Schemas[typeName]; !known {
			unknown = append(unknown, typeName)
		}
	}
	sort.Strings(unknown)
	for _, typeName := range unknown {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := o.migrateType(ctx, typeName, grouped[typeName]); err != nil {
			return result, err
		}
	}

	pending := o.state.TakePending()
	o.logger.Infow("Resolving deferred relationships", "pending", len(pending))
	resolver := resolve.New(o.store, o.catalog, o.state, o.logger)
	resolver.ResolveAll(ctx, pending)

	result.CompletedAt = time.Now()
	result.Duration = result.CompletedAt.Sub(result.StartedAt)
	result.Assets, result.Entities, result.Relations = o.state.Snapshot()
	result.Identities = o.state.Identities()
	result.AssetMap = o.state.AssetMap()
	result.Errors = o.state.Errors()
	result.Success = len(result.Errors) == 0

	o.logger.Infow("Migration complete",
		"duration", result.Duration,
		"entities_completed", result.Entities.Completed,
		"entities_failed", result.Entities.Failed,
		"relations_completed", result.Relations.Completed,
		"errors", len(result.Errors),
	)

	return result, nil
}

// migrateType processes one entity type's documents in bounded-size
// batches. All operations within a batch are issued concurrently and the
// batch waits for every operation to settle; a failing document never
// blocks or cancels its batch siblings.
func (o *Orchestrator) migrateType(ctx context.Context, typeName string, docs []source.Document) error {
	if len(docs) == 0 {
		return nil
	}

	log := o.logger.WithType(typeName)
	o.state.AddEntityTotal(len(docs))

	batchSize := o.cfg.Processing.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	batchNum := 0
	for start := 0; start < len(docs); start += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := start + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		batch := docs[start:end]
		batchNum++

		log.WithBatch(batchNum).Infow("Processing batch", "documents", len(batch))

		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(doc source.Document) {
				defer wg.Done()
				o.migrateDocument(ctx, doc)
			}(batch[i])
		}
		wg.Wait()

		// Fixed pause between batches as simple backpressure against the
		// target's rate limits.
		if o.cfg.Processing.SleepSeconds > 0 && end < len(docs) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(o.cfg.Processing.SleepSeconds * float64(time.Second))):
			}
		}
	}

	return nil
}

// migrateDocument transforms and creates one entity. All failures are
// recorded into the run state; processing continues with the next document.
func (o *Orchestrator) migrateDocument(ctx context.Context, doc source.Document) {
	log := o.logger.WithType(doc.Type).WithDocument(doc.ID)

	payload, err := o.transformer.Transform(doc)
	if err != nil {
		o.state.EntityFailed()
		o.state.RecordError("entities", doc.ID, err.Error())
		log.Warnw("Document transform failed", "error", err)
		return
	}

	schema := o.catalog.Schema(doc.Type)
	entry, err := o.createWithRetry(ctx, schema.PluralName, payload)
	if err != nil {
		o.state.EntityFailed()
		o.state.RecordError("entities", doc.ID, err.Error())
		log.Warnw("Entity creation rejected", "error", err)
		return
	}

	o.state.MapIdentity(doc.ID, state.Identity{
		ID:         entry.ID,
		DocumentID: entry.DocumentID,
		Type:       doc.Type,
	})
	o.state.EntityCompleted()
}

// createWithRetry issues the create call with the configured bounded retry.
func (o *Orchestrator) createWithRetry(ctx context.Context, plural string, payload map[string]interface{}) (*target.Entry, error) {
	attempts := o.cfg.Processing.RetryCount + 1
	delay := time.Duration(o.cfg.Processing.RetryDelay * float64(time.Second))

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		entry, err := o.store.Create(ctx, plural, payload)
		if err == nil {
			return entry, nil
		}
		lastErr = err

		// Rejections are final; only transport-level failures are retried.
		if _, rejected := err.(*target.StatusError); rejected {
			return nil, err
		}
	}
	return nil, lastErr
}
