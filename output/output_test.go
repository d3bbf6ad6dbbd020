package output

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferRawData(t *testing.T) {
	b := NewBuffer()
	b.RawData([]byte{0x90})
	b.RawData([]byte{0xc3, 0xcc})
	require.Equal(t, []byte{0x90, 0xc3, 0xcc}, b.Bytes())
	require.Equal(t, int64(3), b.Len())
	require.Empty(t, b.Relocs())
}

func TestBufferAddress(t *testing.T) {
	b := NewBuffer()
	b.RawData([]byte{0xb8})
	b.Address(0x1234, 4, 2, NoSeg)

	require.Equal(t, []byte{0xb8, 0x34, 0x12, 0x00, 0x00}, b.Bytes())
	require.Equal(t, []Reloc{{
		Kind: RelocAbs, Offset: 1, Size: 4, Segment: 2, WRT: NoSeg, Addend: 0x1234,
	}}, b.Relocs())
}

func TestBufferAddressConstant(t *testing.T) {
	b := NewBuffer()
	b.Address(-2, 2, NoSeg, NoSeg)
	require.Equal(t, []byte{0xfe, 0xff}, b.Bytes())
	require.Empty(t, b.Relocs())
}

func TestBufferRelAddress(t *testing.T) {
	t.Run("cross segment records a fixup", func(t *testing.T) {
		b := NewBuffer()
		b.RelAddress(0x40, 4, 3, 5)
		require.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, b.Bytes())
		relocs := b.Relocs()
		require.Len(t, relocs, 1)
		require.Equal(t, RelocRel, relocs[0].Kind)
		require.Equal(t, int32(3), relocs[0].Segment)
	})

	t.Run("same segment is already resolved", func(t *testing.T) {
		b := NewBuffer()
		b.RelAddress(-5, 1, NoSeg, 0)
		require.Equal(t, []byte{0xfb}, b.Bytes())
		require.Empty(t, b.Relocs())
	})
}

func TestBufferSegmentAndReserve(t *testing.T) {
	b := NewBuffer()
	b.Segment(0x1234)
	require.Equal(t, []byte{0x34, 0x12}, b.Bytes())

	b.Reserve(3)
	require.Equal(t, int64(5), b.Len())
	require.Equal(t, []byte{0x34, 0x12, 0x00, 0x00, 0x00}, b.Bytes())
}

func TestBufferReset(t *testing.T) {
	b := NewBuffer()
	b.RawData([]byte{1, 2, 3})
	b.Address(1, 4, 0, NoSeg)
	b.Reset()
	require.Zero(t, b.Len())
	require.Empty(t, b.Relocs())
}
