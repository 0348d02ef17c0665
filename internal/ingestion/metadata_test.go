package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_JSONMarshaling(t *testing.T) {
	metadata := &Metadata{
		Source:    SourceURL,
		URL:       "https://github.com/janedoe",
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		Platform:  "github",
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var unmarshaled Metadata
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, *metadata, unmarshaled)
}

func TestComputeHash(t *testing.T) {
	hash1 := computeHash("test content")
	hash2 := computeHash("test content")
	hash3 := computeHash("different content")

	assert.Equal(t, hash1, hash2)
	assert.NotEqual(t, hash1, hash3)
	assert.Len(t, hash1, 64)
}

func TestNewMetadata(t *testing.T) {
	metadata := NewMetadata(SourceURL, "héllo", "https://janedoe.dev")

	assert.Equal(t, SourceURL, metadata.Source)
	assert.Equal(t, "https://janedoe.dev", metadata.URL)
	assert.Equal(t, computeHash("héllo"), metadata.Hash)
	assert.Equal(t, 5, metadata.Chars)

	_, err := time.Parse(time.RFC3339, metadata.Timestamp)
	assert.NoError(t, err)
}

func TestNewMetadata_EmptyURL(t *testing.T) {
	metadata := NewMetadata(SourceFile, "content", "")
	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)
	assert.NotContains(t, string(jsonBytes), `"url"`)
}
