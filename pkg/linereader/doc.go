// Package linereader extracts newline-terminated lines from byte sources.
//
// # Overview
//
// A Reader hands out one line per call to NextLine, including the
// terminating '\n' when the source contained one. It keeps a small
// leftover buffer per source, so several sources can be read through the
// same Reader in any interleaved order without their state mixing.
//
// Goals:
//
//  1. Return lines exactly as they appear in the source, terminator included
//  2. Deliver the final line even when it has no trailing newline
//  3. Keep per-source state independent, so interleaved reads behave as if
//     each source were read in isolation
//  4. Hand full ownership of each returned line to the caller
//
// # Contract
//
// Concatenating every line returned for a source, in call order, reproduces
// the source's byte content exactly. No byte is duplicated or dropped. Only
// '\n' is recognized as a terminator; there is no '\r\n' normalization and
// no encoding handling.
//
// End of stream is reported as io.EOF once the source is exhausted and no
// leftover bytes remain. The Reader does not latch that signal: if the
// source later yields more bytes (a pipe, a growing file), subsequent calls
// simply produce more lines. Callers that stop reading a source early
// should call Forget to release its leftover buffer.
//
// # Errors
//
// A failed read is wrapped and returned as-is; no partial line is ever
// returned alongside an error. After a hard read error the leftover bytes
// for that source are discarded and the source should be considered
// unusable. This is a deliberate choice: the alternative (preserving the
// leftover) would leak memory for sources the caller abandons after a
// failure.
//
// # Chunk size
//
// The chunk size only controls how many bytes are requested per underlying
// read. It never affects where line boundaries fall.
package linereader
