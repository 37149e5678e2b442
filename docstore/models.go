package docstore

// Chunk is one retrieval unit of an ingested document. IDs follow the
// {normalized doc name}_{sequential index} scheme, so re-ingesting a document
// addresses the same records.
type Chunk struct {
	ID   string
	Text string
	Doc  string
	Page int
	Crc  uint32
}

type SearchResult struct {
	ID       string  `json:"id"`
	Text     string  `json:"text"`
	Doc      string  `json:"doc"`
	Page     int     `json:"page"`
	Distance float32 `json:"distance"`
}

type IngestedDoc struct {
	Doc string
	Crc uint32
}
