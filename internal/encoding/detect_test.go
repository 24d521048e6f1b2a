package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rahulk736694/typeface-finance-app/internal/encoding"
)

func decode(t *testing.T, input []byte) string {
	t.Helper()

	r, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)

	got, err := io.ReadAll(r)
	require.NoError(t, err)

	return string(got)
}

func TestNewUTF8Reader_UTF8Passthrough(t *testing.T) {
	input := "date,amount,description\n2024-01-05,12.50,Café com açúcar\n"
	assert.Equal(t, input, decode(t, []byte(input)))
}

func TestNewUTF8Reader_Windows1252(t *testing.T) {
	// "Café" with é encoded as 0xE9.
	input := []byte{'C', 'a', 'f', 0xE9, ',', '1', '2', '.', '5', '0', '\n'}
	assert.Equal(t, "Café,12.50\n", decode(t, input))
}

func TestNewUTF8Reader_StripsUTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte("date,amount\n")...)
	assert.Equal(t, "date,amount\n", decode(t, input))
}

func TestNewUTF8Reader_UTF16LE(t *testing.T) {
	var input []byte
	input = append(input, 0xFF, 0xFE)
	for _, r := range "date,amount\n" {
		input = append(input, byte(r), 0x00)
	}
	assert.Equal(t, "date,amount\n", decode(t, input))
}
