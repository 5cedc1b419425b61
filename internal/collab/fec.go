package collab

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/klauspost/reedsolomon"
)

// Default shard counts for ChunkCoder, matching the classic RS(255,223)
// split used for a single-byte-per-shard block code.
const (
	DefaultDataShards   = 223
	DefaultParityShards = 32
)

// ChunkCoder adds a CRC-32 integrity check and Reed-Solomon forward error
// correction to each payload chunk before it is handed to ToFrames, so a
// simulated channel's bit errors can be detected before demodulated bits
// are trusted. Only shards the caller marks as erasures are reconstructed
// (up to the parity budget); corrupted shards that are not marked make
// decoding fail rather than being corrected.
type ChunkCoder struct {
	enc        reedsolomon.Encoder
	dataShards int
	parShards  int
}

// NewChunkCoder builds a coder with the default RS(255,223) shard split.
func NewChunkCoder() (*ChunkCoder, error) {
	return NewChunkCoderCustom(DefaultDataShards, DefaultParityShards)
}

// NewChunkCoderCustom builds a coder with an explicit data/parity shard
// split (1 byte per shard).
func NewChunkCoderCustom(dataShards, parityShards int) (*ChunkCoder, error) {
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, fmt.Errorf("collab: create reed-solomon encoder: %w", err)
	}
	return &ChunkCoder{enc: enc, dataShards: dataShards, parShards: parityShards}, nil
}

// EncodeChunk appends a CRC-32 to data, then Reed-Solomon-encodes the
// result one byte per shard, returning dataShards+parShards bytes.
func (c *ChunkCoder) EncodeChunk(data []byte) ([]byte, error) {
	withCRC := appendCRC32(data)
	if len(withCRC) > c.dataShards {
		return nil, fmt.Errorf("collab: chunk (%d bytes incl. CRC) exceeds %d data shards", len(withCRC), c.dataShards)
	}

	total := c.dataShards + c.parShards
	shards := make([][]byte, total)
	for i := 0; i < c.dataShards; i++ {
		var b byte
		if i < len(withCRC) {
			b = withCRC[i]
		}
		shards[i] = []byte{b}
	}
	for i := c.dataShards; i < total; i++ {
		shards[i] = make([]byte, 1)
	}

	if err := c.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("collab: encode chunk: %w", err)
	}

	out := make([]byte, total)
	for i, s := range shards {
		out[i] = s[0]
	}
	return out, nil
}

// DecodeChunk reconstructs a chunk from a possibly-corrupted encoded
// block, using erasures to mark known-bad shard indices, then verifies
// the recovered CRC-32. dataLen is the original pre-CRC payload length.
func (c *ChunkCoder) DecodeChunk(block []byte, erasures []int, dataLen int) ([]byte, error) {
	total := c.dataShards + c.parShards
	if len(block) != total {
		return nil, fmt.Errorf("collab: encoded block size %d != %d shards", len(block), total)
	}

	shards := make([][]byte, total)
	for i := 0; i < total; i++ {
		shards[i] = []byte{block[i]}
	}
	for _, idx := range erasures {
		if idx >= 0 && idx < total {
			shards[idx] = nil
		}
	}

	if err := c.enc.Reconstruct(shards); err != nil {
		return nil, fmt.Errorf("collab: reconstruct chunk: %w", err)
	}
	ok, err := c.enc.Verify(shards)
	if err != nil {
		return nil, fmt.Errorf("collab: verify chunk: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("collab: chunk failed reed-solomon verification")
	}

	withCRC := make([]byte, dataLen+4)
	for i := range withCRC {
		withCRC[i] = shards[i][0]
	}
	data, crcOK := verifyCRC32(withCRC)
	if !crcOK {
		return nil, fmt.Errorf("collab: chunk failed CRC-32 check")
	}
	return data, nil
}

// DataShards returns the configured data shard count.
func (c *ChunkCoder) DataShards() int { return c.dataShards }

// ParityShards returns the configured parity shard count.
func (c *ChunkCoder) ParityShards() int { return c.parShards }

func appendCRC32(data []byte) []byte {
	out := make([]byte, len(data)+4)
	copy(out, data)
	binary.BigEndian.PutUint32(out[len(data):], crc32.ChecksumIEEE(data))
	return out
}

func verifyCRC32(dataWithCRC []byte) ([]byte, bool) {
	if len(dataWithCRC) < 4 {
		return nil, false
	}
	data := dataWithCRC[:len(dataWithCRC)-4]
	expected := binary.BigEndian.Uint32(dataWithCRC[len(dataWithCRC)-4:])
	return data, crc32.ChecksumIEEE(data) == expected
}
