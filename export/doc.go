// Package export drives the transcript export pipeline: enumerate transcript
// identifiers from the source, skip the ones already checkpointed, and for
// each remaining identifier fetch, chunk, embed, upsert and checkpoint, with
// per-item error isolation so one bad transcript never aborts the run.
//
// The package also provides the supporting pieces the orchestrator is built
// from: a file-backed checkpoint store, a line-delimited JSON audit writer,
// bounded retry with exponential backoff, and progress tracking.
package export
