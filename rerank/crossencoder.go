// Package rerank scores retrieval candidates against a query through a
// cross-encoder model served over HTTP and selects the top-k most relevant.
package rerank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ErrNoCandidates is returned when an empty candidate set is passed to Rerank.
// Callers are expected to short-circuit the empty-retrieval case before
// invoking the re-ranker.
var ErrNoCandidates = errors.New("no candidate documents to re-rank")

type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, model string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type rankRequest struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	Documents []string `json:"documents"`
	TopN      int      `json:"top_n"`
}

type rankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"relevance_score"`
}

type rankResponse struct {
	Results []rankResult `json:"results"`
}

// Rerank scores every candidate against query and returns the top-k texts
// concatenated in descending-score order, each followed by a blank line,
// together with the selected candidates' positions in docs. Fewer than topK
// results come back when the candidate set is smaller. Candidates with equal
// scores keep their original order.
func (c *Client) Rerank(ctx context.Context, query string, docs []string, topK int) (string, []int, error) {
	if len(docs) == 0 {
		return "", nil, ErrNoCandidates
	}

	results, err := c.rank(ctx, query, docs, topK)
	if err != nil {
		return "", nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Index < results[j].Index
	})
	if topK < len(results) {
		results = results[:topK]
	}

	var sb strings.Builder
	indices := make([]int, 0, len(results))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(docs) {
			return "", nil, fmt.Errorf("re-ranker returned out-of-range index %d for %d documents", r.Index, len(docs))
		}

		sb.WriteString(docs[r.Index])
		sb.WriteString("\n\n")
		indices = append(indices, r.Index)
	}

	return sb.String(), indices, nil
}

func (c *Client) rank(ctx context.Context, query string, docs []string, topN int) ([]rankResult, error) {
	payload, err := json.Marshal(rankRequest{
		Model:     c.model,
		Query:     query,
		Documents: docs,
		TopN:      topN,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal rerank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rerank", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create rerank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call re-ranker: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("re-ranker returned status %s", resp.Status)
	}

	var r rankResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode rerank response: %w", err)
	}

	return r.Results, nil
}
