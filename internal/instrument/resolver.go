package instrument

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
)

// CatalogSource fetches security ids for the wanted symbols from the
// bulk catalog. Implemented by the api package.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, symbols []string) (map[string]string, error)
}

// Resolver maps symbols to security ids. Reads vastly outnumber writes:
// the only writer is the catalog fallback patching newly discovered ids.
type Resolver struct {
	catalog CatalogSource
	logger  *slog.Logger

	mu         sync.RWMutex
	equities   map[string]string
	nseIndices map[string]string
	bseIndices map[string]string
}

// NewResolver creates a Resolver seeded with the static tables.
// catalog may be nil, which disables the fallback.
func NewResolver(catalog CatalogSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		catalog:    catalog,
		logger:     logger,
		equities:   make(map[string]string, len(seedEquities)),
		nseIndices: make(map[string]string, len(seedNSEIndices)),
		bseIndices: make(map[string]string, len(seedBSEIndices)),
	}
	for k, v := range seedEquities {
		r.equities[k] = v
	}
	for k, v := range seedNSEIndices {
		r.nseIndices[k] = v
	}
	for k, v := range seedBSEIndices {
		r.bseIndices[k] = v
	}
	return r
}

// Resolve maps a symbol to its segment and security id.
func (r *Resolver) Resolve(symbol string) (Ref, bool) {
	s := normalize(symbol)

	r.mu.RLock()
	id, ok := r.equities[s]
	if !ok {
		id, ok = r.nseIndices[s]
	}
	if !ok {
		id, ok = r.bseIndices[s]
	}
	r.mu.RUnlock()

	if !ok {
		return Ref{}, false
	}

	return Ref{
		Symbol:     s,
		Segment:    ClassifySegment(s),
		SecurityID: id,
	}, true
}

// ResolveAll resolves a symbol set, returning the resolved refs and the
// symbols that have no known security id.
func (r *Resolver) ResolveAll(symbols []string) ([]Ref, []string) {
	refs := make([]Ref, 0, len(symbols))
	var unresolved []string
	for _, sym := range symbols {
		ref, ok := r.Resolve(sym)
		if !ok {
			unresolved = append(unresolved, normalize(sym))
			continue
		}
		refs = append(refs, ref)
	}
	return refs, unresolved
}

// GroupBySegment resolves symbols into the segment-grouped numeric id
// mapping the snapshot endpoint expects. Unresolvable symbols and
// non-numeric ids are skipped with a warning.
func (r *Resolver) GroupBySegment(symbols []string) map[Segment][]int {
	grouped := make(map[Segment][]int)
	for _, sym := range symbols {
		ref, ok := r.Resolve(sym)
		if !ok {
			r.logger.Warn("security id not found for symbol", "symbol", normalize(sym))
			continue
		}
		id, err := strconv.Atoi(ref.SecurityID)
		if err != nil {
			r.logger.Warn("non-numeric security id", "symbol", ref.Symbol, "id", ref.SecurityID)
			continue
		}
		grouped[ref.Segment] = append(grouped[ref.Segment], id)
	}
	return grouped
}

// ReadableLabel reverse-maps a wire security id to a human symbol.
// Equities are checked first, then NSE indices, then BSE indices. When no
// table knows the id, the raw id stands in as the label so tracking still
// functions.
func (r *Resolver) ReadableLabel(securityID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, table := range []map[string]string{r.equities, r.nseIndices, r.bseIndices} {
		for sym, id := range table {
			if id == securityID {
				return sym
			}
		}
	}
	return securityID
}

// PatchFromCatalog fetches the bulk catalog and fills in ids for the
// given symbols where the tables have none. Best-effort: a fetch or parse
// failure returns the error for logging but leaves the resolver usable.
// Symbols found are patched into the equities table; index symbols come
// only from the seed tables, so classification is unaffected.
func (r *Resolver) PatchFromCatalog(ctx context.Context, symbols []string) error {
	if r.catalog == nil {
		return nil
	}

	_, unresolved := r.ResolveAll(symbols)
	if len(unresolved) == 0 {
		return nil
	}

	found, err := r.catalog.FetchCatalog(ctx, unresolved)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	patched := 0
	for _, sym := range unresolved {
		id, ok := found[sym]
		if !ok || id == "" {
			continue
		}
		r.equities[sym] = id
		patched++
	}

	r.logger.Info("catalog fallback applied",
		"unresolved", len(unresolved),
		"patched", patched,
	)
	return nil
}
