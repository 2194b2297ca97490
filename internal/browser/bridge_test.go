package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChunk_ConvertsStringKeyedSelectorMapToInts(t *testing.T) {
	raw := map[string]any{
		"outputString": "1:Log in\n2:Email",
		"selectorMap":  map[string]any{"1": "/html/body/a[1]", "2": "/html/body/input[1]"},
		"chunk":        0,
		"chunks":       []int{0, 1, 2},
	}

	c, err := decodeChunk(raw)
	require.NoError(t, err)
	assert.Equal(t, "1:Log in\n2:Email", c.OutputString)
	assert.Equal(t, "/html/body/a[1]", c.SelectorMap[1])
	assert.Equal(t, "/html/body/input[1]", c.SelectorMap[2])
	assert.Equal(t, 0, c.ChunkIndex)
	assert.Equal(t, []int{0, 1, 2}, c.Chunks)
}

func TestDecodeChunk_SkipsUnparsableSelectorKeys(t *testing.T) {
	raw := map[string]any{
		"outputString": "",
		"selectorMap":  map[string]any{"not-a-number": "/html/body/a[1]"},
		"chunk":        -1,
		"chunks":       []int{},
	}

	c, err := decodeChunk(raw)
	require.NoError(t, err)
	assert.Empty(t, c.SelectorMap)
	assert.Equal(t, -1, c.ChunkIndex)
}

func TestDecodeChunk_EmptyChunks(t *testing.T) {
	raw := map[string]any{
		"outputString": "",
		"selectorMap":  map[string]any{},
		"chunk":        -1,
		"chunks":       []int{},
	}

	c, err := decodeChunk(raw)
	require.NoError(t, err)
	assert.Equal(t, "", c.OutputString)
	assert.Len(t, c.Chunks, 0)
}

func TestWalkerInstallScript_WrapsWalkerAsIIFE(t *testing.T) {
	script := walkerInstallScript()
	assert.Contains(t, script, "__browserloopWalk")
	assert.True(t, strings.HasPrefix(script, "("))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(script), ")()"))
}
