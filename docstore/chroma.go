package docstore

import (
	"context"
	"fmt"

	chroma "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"
)

const (
	DocName = "doc_name"
	DocCrc  = "doc_crc"
	PageNum = "page"
)

// collectionName is fixed: every ingested document lands in the same
// collection, retrieved or created idempotently on startup.
const collectionName = "rag_documents"

type ChromaStore struct {
	results int
	col     chroma.Collection
}

type ChromaStoreConfig struct {
	BaseURL       string
	EmbeddingFunc embeddings.EmbeddingFunction
	Results       int
	Reset         bool
}

func NewChromaStore(ctx context.Context, cfg ChromaStoreConfig) (*ChromaStore, error) {
	client, err := chroma.NewHTTPClient(chroma.WithBaseURL(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create chroma client: %w", err)
	}

	if cfg.Reset {
		// The collection may not exist yet on a fresh server.
		_ = client.DeleteCollection(ctx, collectionName)
	}

	col, err := client.GetOrCreateCollection(ctx, collectionName,
		chroma.WithEmbeddingFunctionCreate(cfg.EmbeddingFunc))
	if err != nil {
		return nil, fmt.Errorf("failed to get or create collection %s: %w", collectionName, err)
	}

	return &ChromaStore{
		results: cfg.Results,
		col:     col,
	}, nil
}

// Upsert inserts or replaces one record per chunk. Embeddings are computed by
// the collection's embedding function, so an unreachable embedding service
// surfaces here as an error.
func (ds *ChromaStore) Upsert(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]chroma.DocumentID, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	metas := make([]chroma.DocumentMetadata, 0, len(chunks))
	for _, c := range chunks {
		ids = append(ids, chroma.DocumentID(c.ID))
		texts = append(texts, c.Text)
		metas = append(metas, chroma.NewDocumentMetadata(
			chroma.NewStringAttribute(DocName, c.Doc),
			chroma.NewIntAttribute(DocCrc, int64(c.Crc)),
			chroma.NewIntAttribute(PageNum, int64(c.Page)),
		))
	}

	err := ds.col.Upsert(ctx,
		chroma.WithIDs(ids...),
		chroma.WithTexts(texts...),
		chroma.WithMetadatas(metas...),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert %d chunks: %w", len(chunks), err)
	}

	return nil
}

// Query returns up to n records ordered by decreasing relevance. An empty
// collection or no matching chunks yields an empty slice, not an error.
func (ds *ChromaStore) Query(ctx context.Context, query string, n int) ([]SearchResult, error) {
	if n <= 0 {
		n = ds.results
	}

	r, err := ds.col.Query(ctx,
		chroma.WithQueryTexts(query),
		chroma.WithNResults(n),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	docGroups := r.GetDocumentsGroups()
	if len(docGroups) == 0 || len(docGroups[0]) == 0 {
		return []SearchResult{}, nil
	}

	docs := docGroups[0]
	ids := r.GetIDGroups()[0]
	metadatas := r.GetMetadatasGroups()[0]
	distances := r.GetDistancesGroups()[0]

	res := make([]SearchResult, 0, len(docs))
	for i := range docs {
		name, _ := metadatas[i].GetString(DocName)
		page, _ := metadatas[i].GetInt(PageNum)
		res = append(res, SearchResult{
			ID:       string(ids[i]),
			Text:     docs[i].ContentString(),
			Doc:      name,
			Page:     int(page),
			Distance: float32(distances[i]),
		})
	}

	return res, nil
}

// Forget removes every chunk of the named document. Ingestion calls this
// before upserting, so a shrunken re-ingest leaves no stale trailing chunks.
func (ds *ChromaStore) Forget(ctx context.Context, docName string) error {
	err := ds.col.Delete(ctx, chroma.WithWhereDelete(chroma.EqString(DocName, docName)))
	if err != nil {
		return fmt.Errorf("failed to forget doc %s: %w", docName, err)
	}

	return nil
}

// Ingested reports the distinct documents currently in the collection with the
// checksum they were ingested at.
func (ds *ChromaStore) Ingested(ctx context.Context) ([]IngestedDoc, error) {
	res, err := ds.col.Get(ctx)
	if err != nil {
		return nil, err
	}

	var docs []IngestedDoc
	seen := make(map[IngestedDoc]struct{})

	for _, meta := range res.GetMetadatas() {
		name, _ := meta.GetString(DocName)
		crc, _ := meta.GetInt(DocCrc)
		doc := IngestedDoc{
			Doc: name,
			Crc: uint32(crc),
		}

		if _, ok := seen[doc]; ok {
			continue
		}

		seen[doc] = struct{}{}
		docs = append(docs, doc)
	}

	return docs, nil
}
