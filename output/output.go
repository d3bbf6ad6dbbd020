// Package output receives the bytes and relocations an encoded
// instruction produces. The encoder talks to a Sink; Buffer is the
// in-memory implementation used by the assembler driver and the tests.
package output

// NoSeg marks the absence of a segment in a relocation record.
const NoSeg int32 = -1

// Sink accepts the pieces of an encoded instruction in emission order.
type Sink interface {
	// RawData appends literal machine-code bytes.
	RawData(p []byte)
	// Address appends size bytes holding value, relocated against
	// segment (and wrt when not NoSeg) by the consumer.
	Address(value int64, size int, segment, wrt int32)
	// RelAddress appends a size-byte self-relative reference to value
	// in segment. The reference point is the end of the instruction,
	// which lies insnEnd bytes past the start of the field.
	RelAddress(value int64, size int, segment int32, insnEnd int64)
	// Segment appends the 16-bit segment part of a far pointer.
	Segment(segment uint16)
	// Reserve extends the output with n uninitialized bytes.
	Reserve(n int64)
}

// RelocKind distinguishes the relocation records a Buffer collects.
type RelocKind uint8

const (
	RelocAbs RelocKind = iota + 1
	RelocRel
)

// Reloc is one pending fixup against another segment.
type Reloc struct {
	Kind    RelocKind
	Offset  int64 // position of the field in the buffer
	Size    int
	Segment int32
	WRT     int32
	// Addend is the value stored before relocation.
	Addend int64
}

// Buffer is a Sink that captures bytes and relocation records.
type Buffer struct {
	buf    []byte
	relocs []Reloc
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer { return &Buffer{} }

// Len returns the number of bytes emitted so far, reserved space
// included.
func (b *Buffer) Len() int64 { return int64(len(b.buf)) }

// Bytes returns the emitted machine code.
func (b *Buffer) Bytes() []byte { return b.buf }

// Relocs returns the relocation records collected so far.
func (b *Buffer) Relocs() []Reloc { return b.relocs }

// Reset empties the buffer for another pass.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.relocs = b.relocs[:0]
}

func (b *Buffer) RawData(p []byte) {
	b.buf = append(b.buf, p...)
}

func (b *Buffer) Address(value int64, size int, segment, wrt int32) {
	if segment != NoSeg || wrt != NoSeg {
		b.relocs = append(b.relocs, Reloc{
			Kind: RelocAbs, Offset: b.Len(), Size: size,
			Segment: segment, WRT: wrt, Addend: value,
		})
	}
	b.emitLE(value, size)
}

func (b *Buffer) RelAddress(value int64, size int, segment int32, insnEnd int64) {
	if segment != NoSeg {
		b.relocs = append(b.relocs, Reloc{
			Kind: RelocRel, Offset: b.Len(), Size: size,
			Segment: segment, WRT: NoSeg, Addend: value,
		})
		b.emitLE(0, size)
		return
	}
	// Same-segment target already resolved by the encoder: value holds
	// the final displacement.
	b.emitLE(value, size)
}

func (b *Buffer) Segment(segment uint16) {
	b.emitLE(int64(segment), 2)
}

func (b *Buffer) Reserve(n int64) {
	for ; n > 0; n-- {
		b.buf = append(b.buf, 0)
	}
}

func (b *Buffer) emitLE(v int64, size int) {
	for i := 0; i < size; i++ {
		b.buf = append(b.buf, byte(v))
		v >>= 8
	}
}
