package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Pushpachoudary/Qurey-Stream/docstore"
	"github.com/Pushpachoudary/Qurey-Stream/llm"
	"github.com/Pushpachoudary/Qurey-Stream/readers"
)

type VectorStore interface {
	Upsert(ctx context.Context, chunks []docstore.Chunk) error
	Query(ctx context.Context, query string, n int) ([]docstore.SearchResult, error)
	Forget(ctx context.Context, docName string) error
	Ingested(ctx context.Context) ([]docstore.IngestedDoc, error)
}

type Reranker interface {
	Rerank(ctx context.Context, query string, docs []string, topK int) (string, []int, error)
}

type AnswerGenerator interface {
	Stream(ctx context.Context, contextText, question string) <-chan llm.Fragment
}

type Chunker interface {
	SplitPages(pages []readers.Page, docName string, crc uint32) []docstore.Chunk
}

type PageReader interface {
	CanRead(path string) bool
	ReadPages(path string) ([]readers.Page, error)
}

// Pipeline wires chunking, indexing, retrieval, re-ranking and answer
// generation into the ingest and answer flows. It owns no retrieval logic of
// its own beyond sequencing and the empty-result short circuit.
type Pipeline struct {
	log      *slog.Logger
	store    VectorStore
	chunker  Chunker
	reranker Reranker
	llm      AnswerGenerator
	readers  []PageReader
	results  int
	topK     int
}

// Answer is the outcome of one question. When Found is false no model call
// was made and the other fields are empty. Fragments is single-pass; the full
// answer is the concatenation of its texts.
type Answer struct {
	Found       bool
	Fragments   <-chan llm.Fragment
	Retrieved   []docstore.SearchResult
	RelevantIDs []int
}

var docNameReplacer = strings.NewReplacer("-", "", ".", "", " ", "_")

// normalizeDocName makes a display name usable as a stable chunk-id prefix.
func normalizeDocName(name string) string {
	return docNameReplacer.Replace(name)
}

// Ingest indexes a document supplied as raw bytes under its display name. The
// bytes pass through a temp file for the extractors; the file is removed on
// every exit path.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, name string) error {
	tmp, err := os.CreateTemp("", "ingest_*"+filepath.Ext(name))
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	return p.IngestFile(ctx, tmp.Name(), name)
}

// IngestFile extracts the document at path page by page, chunks it and
// replaces any previously indexed chunks of the same document. Chunk ids are
// {normalized name}_{index}, so re-ingestion overwrites rather than
// accumulates.
func (p *Pipeline) IngestFile(ctx context.Context, path string, name string) error {
	reader, err := findReader(p.readers, path)
	if err != nil {
		return err
	}

	pages, err := reader.ReadPages(path)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", name, err)
	}

	var crc uint32
	for _, page := range pages {
		crc = crc32.Update(crc, crc32.IEEETable, []byte(page.Text))
	}

	docName := normalizeDocName(name)
	chunks := p.chunker.SplitPages(pages, docName, crc)

	if err := p.store.Forget(ctx, docName); err != nil {
		return fmt.Errorf("failed to drop previous chunks of %s: %w", docName, err)
	}

	if len(chunks) == 0 {
		p.log.Warn("document contains no extractable text", "doc", docName)
		return nil
	}

	if err := p.store.Upsert(ctx, chunks); err != nil {
		return fmt.Errorf("failed to index %s: %w", name, err)
	}

	p.log.Info("document ingested", "doc", docName, "pages", len(pages), "chunks", len(chunks))
	return nil
}

// Answer retrieves candidates for question, re-ranks them and streams a
// grounded answer. An empty retrieval is not an error: it returns
// Answer{Found: false} without calling the chat model.
func (p *Pipeline) Answer(ctx context.Context, question string) (*Answer, error) {
	results, err := p.store.Query(ctx, question, p.results)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve candidates: %w", err)
	}
	if len(results) == 0 {
		return &Answer{Found: false}, nil
	}

	docs := make([]string, len(results))
	for i, r := range results {
		docs[i] = r.Text
	}

	relevant, ids, err := p.reranker.Rerank(ctx, question, docs, p.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to re-rank candidates: %w", err)
	}

	p.log.Info("answering question", "candidates", len(results), "selected", len(ids))

	return &Answer{
		Found:       true,
		Fragments:   p.llm.Stream(ctx, relevant, question),
		Retrieved:   results,
		RelevantIDs: ids,
	}, nil
}

func findReader(rs []PageReader, path string) (PageReader, error) {
	for _, r := range rs {
		if r.CanRead(path) {
			return r, nil
		}
	}

	return nil, fmt.Errorf("unable to find reader for file type: %s", filepath.Ext(path))
}
