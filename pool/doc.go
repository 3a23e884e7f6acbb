// Package pool implements a fixed-capacity, thread-safe memory allocator
// over a single contiguous backing region using the binary buddy algorithm.
//
//   - The pool never grows; its capacity is fixed at construction time.
//   - Allocation and deallocation are serialized behind a single mutex.
//   - Blocks are tracked in-band: every block begins with a Header carrying
//     its order, free flag, and allocation identity, the same way a C buddy
//     allocator overlays bookkeeping on raw memory. The Go model addresses
//     blocks by offset into an owned []byte rather than by raw pointer,
//     localizing unsafe arithmetic to header reads and writes.
//   - Free blocks at each order are tracked out-of-band in a per-order
//     index so that picking a block to satisfy a request, and finding a
//     buddy to coalesce with, are both O(1).
package pool
