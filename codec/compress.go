package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compressor shrinks encoded cache values before they hit the network.
// Implementations must be safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

// CompressorByName returns a built-in compressor by its stable name.
func CompressorByName(name string) (Compressor, bool) {
	switch name {
	case "none":
		return Noop{}, true
	case "zstd":
		c, err := NewZstd()
		if err != nil {
			return nil, false
		}
		return c, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// Noop passes data through unchanged.
type Noop struct{}

// Compress returns data unchanged.
func (Noop) Compress(data []byte) ([]byte, error) { return data, nil }

// Decompress returns data unchanged.
func (Noop) Decompress(data []byte) ([]byte, error) { return data, nil }

// Name returns the unique name of the compressor ("none").
func (Noop) Name() string { return "none" }

// Zstd compresses with zstandard. Good ratio at low CPU cost; the default
// choice when a remote store is configured.
type Zstd struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewZstd creates a Zstd compressor with the default encoder level.
func NewZstd() (*Zstd, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Zstd{encoder: encoder, decoder: decoder}, nil
}

// Compress encodes data as a zstd frame.
func (z *Zstd) Compress(data []byte) ([]byte, error) {
	return z.encoder.EncodeAll(data, nil), nil
}

// Decompress decodes a zstd frame.
func (z *Zstd) Decompress(data []byte) ([]byte, error) {
	return z.decoder.DecodeAll(data, nil)
}

// Name returns the unique name of the compressor ("zstd").
func (z *Zstd) Name() string { return "zstd" }

// LZ4 compresses with the lz4 frame format. Lower ratio than zstd but
// cheaper to decompress; useful when the remote store is read-heavy.
type LZ4 struct{}

// Compress encodes data as an lz4 frame.
func (LZ4) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress decodes an lz4 frame.
func (LZ4) Decompress(data []byte) ([]byte, error) {
	return io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
}

// Name returns the unique name of the compressor ("lz4").
func (LZ4) Name() string { return "lz4" }
