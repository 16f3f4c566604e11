// Package recluster provides functionality for rebuilding the topic
// cluster snapshot from the full article corpus.
//
// This package supports batch embedding of articles that are missing
// vectors, progress tracking, retry logic with exponential backoff, and
// persisting the resulting snapshot for later inspection.
package recluster
