// Package logs owns the per-task log files written under the data directory
// and the primitives the CLI and daemon share to read them.
//
// It positions handles on the trailing "last N lines" window without loading
// the file into memory, reads newly appended bytes for follow mode, stamps
// lines with wall-clock timestamps while carrying incomplete lines across
// reads, and packs log windows into snappy frames for transfer over the
// daemon socket.
//
// Use this package whenever you need consistent log viewing semantics instead
// of re-implementing ad-hoc tail logic.
package logs
