package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thepoolshop/shopkeep/internal/encoding"
)

func decodeAll(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "sku,name,category\nPOOL-001,Épuisette à feuilles,Accessoires\n"

	assert.Equal(t, input, decodeAll(t, []byte(input)))
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("sku,name\nPOOL-001,Chlore\n")...)

	assert.Equal(t, "sku,name\nPOOL-001,Chlore\n", decodeAll(t, input))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Épuisette" with É as the Windows-1252 byte 0xC9.
	input := []byte{0xC9, 'p', 'u', 'i', 's', 'e', 't', 't', 'e', '\n'}

	assert.Equal(t, "Épuisette\n", decodeAll(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	// "sku\n" as UTF-16 LE with BOM.
	input := []byte{0xFF, 0xFE, 's', 0, 'k', 0, 'u', 0, '\n', 0}

	assert.Equal(t, "sku\n", decodeAll(t, input))
}
