// Package writers turns fused features into serialized outputs.
//
// Design:
//   - Writers own all presentation knowledge (TSV, bedGraph, JSON/JSONL).
//   - The fusion adapter stays domain-only; the pipeline stays orchestration-only.
//   - JSON/JSONL go through pkg/api (v1) for a stable wire format.
package writers
