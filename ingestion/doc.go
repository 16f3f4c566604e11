// Package ingestion provides pipeline orchestration for processing articles.
//
// The Pipeline type manages the ingestion workflow for articles, including:
//   - Validating and adding articles to storage
//   - Detecting near-duplicate articles at ingest time
//   - Generating embeddings asynchronously
//
// Embedding generation runs on a worker pool to maximize throughput.
// Errors during async processing are logged but do not fail the ingestion operation.
package ingestion
