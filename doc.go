// Package docdex is an embeddable hybrid search engine for document chunks
// with precomputed embeddings. It combines cosine similarity over embeddings
// with keyword frequency scoring, fuses the two into a single ranking, and
// serves filtered, paginated result pages with single-flight caching.
//
// Basic usage:
//
//	engine, err := docdex.New()
//	if err != nil { ... }
//	defer engine.Close()
//
//	engine.Ingest([]docdex.Chunk{
//		{DocumentID: "report.pdf", Page: 1, Text: "...", Embedding: vec},
//	})
//
//	page, err := engine.Search(ctx, docdex.Query{
//		Text:      "quarterly revenue",
//		Embedding: queryVec,
//		Mode:      docdex.ModeHybrid,
//		TopN:      10,
//	})
//
// The engine never computes embeddings itself; callers supply them for both
// chunks and queries. The cmd/docdex HTTP server adds optional server-side
// query embedding via an OpenAI-compatible provider.
package docdex
