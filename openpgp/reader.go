package openpgp

import (
	"hash"
	"io"
)

// Stack is the pushdown of transforming readers described in spec §4.1:
// an ordered list of layers, each wrapping the one below, with push/pop
// scoped to a region. The bottom of the stack is always a Source.
type Stack struct {
	layers []Source
	log    logger
}

// NewStack creates a reader stack rooted at origin.
func NewStack(origin Source) *Stack {
	return &Stack{layers: []Source{origin}, log: defaultLogger}
}

// Read pulls from the current top of the stack.
func (s *Stack) Read(dest []byte) (int, error) {
	return s.layers[len(s.layers)-1].Read(dest)
}

// Top returns the current top layer.
func (s *Stack) Top() Source {
	return s.layers[len(s.layers)-1]
}

// Push installs layer as the new top of the stack. Callers build layer
// themselves wrapping s.Top() so the chain of transformations is
// explicit at the call site.
func (s *Stack) Push(layer Source) {
	s.log.Debugf("reader: push %T (depth %d)", layer, len(s.layers)+1)
	s.layers = append(s.layers, layer)
}

// Pop removes and returns the current top layer, restoring the
// previous top. Popping below the origin is a programmer error, caught
// by assertion per spec §4.1 ("a read that asks for more than remains
// ... is a programmer error").
func (s *Stack) Pop() Source {
	if len(s.layers) <= 1 {
		panic("openpgp: pop below reader stack origin")
	}
	top := s.layers[len(s.layers)-1]
	s.layers = s.layers[:len(s.layers)-1]
	s.log.Debugf("reader: pop %T (depth %d)", top, len(s.layers))
	return top
}

// Depth reports how many layers (including the origin) are installed.
func (s *Stack) Depth() int { return len(s.layers) }

// HashTee is a transparent pass-through reader layer that feeds every
// byte it returns into one or more live digest contexts, the mechanism
// spec §4.1 uses to reconstruct the exact byte range that was signed.
type HashTee struct {
	under  Source
	hashes []hash.Hash
}

// NewHashTee wraps under, tee-ing consumed bytes into hashes.
func NewHashTee(under Source, hashes ...hash.Hash) *HashTee {
	return &HashTee{under: under, hashes: hashes}
}

func (h *HashTee) Read(dest []byte) (int, error) {
	n, err := h.under.Read(dest)
	if n > 0 {
		for _, hh := range h.hashes {
			hh.Write(dest[:n])
		}
	}
	return n, err
}

// Hashes returns the digest contexts this tee feeds, so a caller that
// pops the layer can take ownership of them (spec: "hash contexts ...
// are surrendered to the caller at end-of-region").
func (h *HashTee) Hashes() []hash.Hash { return h.hashes }

// PartialBodyReader concatenates new-format partial-length chunks read
// directly from an underlying Source into one contiguous stream, for
// callers that want to stream a packet body (e.g. literal or compressed
// data) rather than have ReadRawPacket materialize it up front.
type PartialBodyReader struct {
	under     Source
	remaining int
	final     bool
}

// NewPartialBodyReader starts a partial-body stream whose first chunk
// is already known to be firstChunkLen bytes (the caller will have just
// decoded the packet's initial partial-length octet to learn this).
func NewPartialBodyReader(under Source, firstChunkLen int) *PartialBodyReader {
	return &PartialBodyReader{under: under, remaining: firstChunkLen}
}

func (p *PartialBodyReader) Read(dest []byte) (int, error) {
	for p.remaining == 0 {
		if p.final {
			return 0, io.EOF
		}
		length, partial, err := decodeNewFormatLength(p.under)
		if err != nil {
			return 0, err
		}
		p.remaining = length
		p.final = !partial
	}
	if len(dest) > p.remaining {
		dest = dest[:p.remaining]
	}
	n, err := p.under.Read(dest)
	p.remaining -= n
	return n, err
}
