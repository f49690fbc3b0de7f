// Package search keeps an in-memory full-text index of tickers the service
// has seen, used for autocomplete suggestions.
package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"finboard/internal/logger"
)

// DefaultLimit is the number of suggestions returned when none is requested.
const DefaultLimit = 10

// MaxLimit caps the number of suggestions per query.
const MaxLimit = 50

// Entry is one indexed instrument.
type Entry struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

type document struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Index is a mem-only bleve index keyed by ticker. It is safe for
// concurrent use.
type Index struct {
	index bleve.Index
	log   *zap.SugaredLogger
}

// NewIndex creates an empty index.
func NewIndex() (*Index, error) {
	idx, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("creating search index: %w", err)
	}
	return &Index{index: idx, log: logger.Named("search")}, nil
}

func buildMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	// Symbols are matched as whole lower-cased tokens so prefix queries work.
	symbol := bleve.NewTextFieldMapping()
	symbol.Analyzer = keyword.Name
	symbol.Store = true
	doc.AddFieldMappingsAt("symbol", symbol)

	name := bleve.NewTextFieldMapping()
	name.Store = true
	doc.AddFieldMappingsAt("name", name)

	im.DefaultMapping = doc
	return im
}

// Add indexes or replaces entries. Blank tickers are ignored.
func (i *Index) Add(entries ...Entry) error {
	batch := i.index.NewBatch()
	for _, e := range entries {
		ticker := strings.ToUpper(strings.TrimSpace(e.Ticker))
		if ticker == "" {
			continue
		}
		doc := document{Symbol: strings.ToLower(ticker), Name: e.Name}
		if err := batch.Index(ticker, doc); err != nil {
			return fmt.Errorf("indexing %s: %w", ticker, err)
		}
	}
	if batch.Size() == 0 {
		return nil
	}
	return i.index.Batch(batch)
}

// Count returns the number of indexed tickers.
func (i *Index) Count() uint64 {
	n, err := i.index.DocCount()
	if err != nil {
		return 0
	}
	return n
}

// Suggest returns up to limit entries matching q, best first. Exact symbol
// matches rank above symbol prefixes, which rank above name matches.
func (i *Index) Suggest(q string, limit int) []Entry {
	q = strings.TrimSpace(q)
	if q == "" {
		return []Entry{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	lower := strings.ToLower(q)

	exact := bleve.NewTermQuery(lower)
	exact.SetField("symbol")
	exact.SetBoost(10.0)

	prefix := bleve.NewPrefixQuery(lower)
	prefix.SetField("symbol")
	prefix.SetBoost(5.0)

	name := bleve.NewMatchQuery(q)
	name.SetField("name")
	name.SetBoost(3.0)

	namePrefix := bleve.NewWildcardQuery(lower + "*")
	namePrefix.SetField("name")
	namePrefix.SetBoost(1.5)

	req := bleve.NewSearchRequest(bleve.NewDisjunctionQuery(exact, prefix, name, namePrefix))
	req.Fields = []string{"symbol", "name"}
	req.Size = limit

	res, err := i.index.Search(req)
	if err != nil {
		i.log.Warnw("suggest query failed", "q", q, "error", err)
		return []Entry{}
	}

	type scored struct {
		entry Entry
		score float64
	}
	hits := make([]scored, 0, len(res.Hits))
	for _, h := range res.Hits {
		name, _ := h.Fields["name"].(string)
		hits = append(hits, scored{entry: Entry{Ticker: h.ID, Name: name}, score: h.Score})
	}
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].score != hits[b].score {
			return hits[a].score > hits[b].score
		}
		return hits[a].entry.Ticker < hits[b].entry.Ticker
	})

	out := make([]Entry, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.entry)
	}
	return out
}

// Close releases the index.
func (i *Index) Close() error {
	return i.index.Close()
}
