package chunk

// Chunk is a unit of ingested document text (one page or segment) with its
// precomputed embedding. Chunks are immutable once ingested; the search engine
// holds only borrowed references during a query and never mutates them.
type Chunk struct {
	documentID string
	page       int
	text       string
	embedding  []float32
	metadata   map[string]string
}

// New creates a chunk.
func New(documentID string, page int, text string, embedding []float32, metadata map[string]string) Chunk {
	return Chunk{
		documentID: documentID,
		page:       page,
		text:       text,
		embedding:  embedding,
		metadata:   metadata,
	}
}

// DocumentID returns the owning document identifier.
func (c *Chunk) DocumentID() string { return c.documentID }

// Page returns the page or segment number within the document.
func (c *Chunk) Page() int { return c.page }

// Text returns the extracted chunk text.
func (c *Chunk) Text() string { return c.text }

// Embedding returns the precomputed embedding vector.
func (c *Chunk) Embedding() []float32 { return c.embedding }

// Metadata returns the free-form chunk metadata.
func (c *Chunk) Metadata() map[string]string { return c.metadata }

// Less orders chunks by ascending (documentID, page). This ordering is the
// tie-break for equal fused scores and must stay stable: cached pages are
// compared byte-for-byte across identical queries.
func (c *Chunk) Less(other *Chunk) bool {
	if c.documentID != other.documentID {
		return c.documentID < other.documentID
	}
	return c.page < other.page
}
