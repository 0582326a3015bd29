package parser

import "io"

// buffer is the grow-on-demand byte buffer backing the parser's lookahead
// (spec.md §4.1 C1: "Buffer & array primitives"). It is fed lazily from an
// io.Reader: peek(n) ensures at least n bytes are buffered (or EOF) without
// consuming them, and read(n) consumes bytes already peeked.
//
// Go's append already gives amortized-growth arrays, so this is a thin
// wrapper rather than a hand-rolled realloc loop — the teacher's own lexer
// buffers literals the same way, via bytes.Buffer.
type buffer struct {
	r    io.Reader
	data []byte
	pos  int // index of the next unread byte in data
	eof  bool
	tmp  [4096]byte
}

func newBuffer(r io.Reader) *buffer {
	return &buffer{r: r}
}

// fill reads more data from the underlying reader until at least n bytes are
// available past pos, or EOF is reached.
func (b *buffer) fill(n int) {
	for !b.eof && len(b.data)-b.pos < n {
		read, err := b.r.Read(b.tmp[:])
		if read > 0 {
			b.data = append(b.data, b.tmp[:read]...)
		}
		if err != nil {
			b.eof = true
		}
	}
	// Deliberately never compacted: the parser's snapshot/restore
	// backtracking keeps raw indices into data, which compaction would
	// invalidate. A whole script sits in memory for the life of the parse,
	// same tradeoff mvdan-sh's lexer makes by buffering full literals.
}

// peek ensures at least n bytes are buffered (fewer at EOF) and returns them
// without consuming.
func (b *buffer) peek(n int) []byte {
	b.fill(n)
	end := b.pos + n
	if end > len(b.data) {
		end = len(b.data)
	}
	return b.data[b.pos:end]
}

// peekByte returns the i-th byte ahead (0 = next unread byte) and whether it
// exists.
func (b *buffer) peekByte(i int) (byte, bool) {
	bs := b.peek(i + 1)
	if len(bs) <= i {
		return 0, false
	}
	return bs[i], true
}

// read consumes and returns up to n bytes.
func (b *buffer) read(n int) []byte {
	bs := b.peek(n)
	out := make([]byte, len(bs))
	copy(out, bs)
	b.pos += len(bs)
	return out
}

// readByte consumes and returns one byte, or (0, false) at EOF.
func (b *buffer) readByte() (byte, bool) {
	bs := b.read(1)
	if len(bs) == 0 {
		return 0, false
	}
	return bs[0], true
}

func (b *buffer) atEOF() bool {
	return len(b.peek(1)) == 0
}
