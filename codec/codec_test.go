package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

func TestCodec_ByName(t *testing.T) {
	for _, name := range []string{"json", "go-json"} {
		c, ok := ByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := ByName("msgpack")
	assert.False(t, ok)
}

func TestCodec_CrossCompatible(t *testing.T) {
	// GoJSON output must decode with the stdlib codec and vice versa,
	// since either may be configured on different processes sharing a store.
	in := []payload{{Content: "doc-1", Similarity: 0.91}, {Content: "doc-2", Similarity: 0.72}}

	b, err := GoJSON{}.Marshal(in)
	require.NoError(t, err)

	var out []payload
	require.NoError(t, JSON{}.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestCompressor_RoundTrip(t *testing.T) {
	zstd, err := NewZstd()
	require.NoError(t, err)

	data := bytes.Repeat([]byte("the same ranked results over and over "), 64)

	for _, c := range []Compressor{Noop{}, zstd, LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			compressed, err := c.Compress(data)
			require.NoError(t, err)

			restored, err := c.Decompress(compressed)
			require.NoError(t, err)
			assert.Equal(t, data, restored)
		})
	}
}

func TestCompressor_ByName(t *testing.T) {
	for _, name := range []string{"none", "zstd", "lz4"} {
		c, ok := CompressorByName(name)
		require.True(t, ok, name)
		assert.Equal(t, name, c.Name())
	}

	_, ok := CompressorByName("snappy")
	assert.False(t, ok)
}
