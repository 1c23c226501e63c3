package world

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorldJSON = `{
	"0,0,0": {"label": "Start", "description": "The starting room."},
	"1,0,0": {"label": "Hall", "description": "A long hall."}
}`

func TestLoadFromJSON(t *testing.T) {
	m, err := LoadFromJSON([]byte(testWorldJSON))
	require.NoError(t, err)
	assert.Equal(t, 2, m.RoomCount())

	room, ok := m.RoomAt(Location{})
	require.True(t, ok)
	assert.Equal(t, "Start", room.Label)
	assert.Equal(t, "The starting room.", room.Description)
}

func TestLoadFromJSONMalformed(t *testing.T) {
	_, err := LoadFromJSON([]byte("not json"))
	assert.Error(t, err)
}

func TestLoadFromJSONBadKey(t *testing.T) {
	_, err := LoadFromJSON([]byte(`{"1,2": {"label": "X"}}`))
	assert.Error(t, err)
}

func TestLoadFromJSONEmptyLabel(t *testing.T) {
	_, err := LoadFromJSON([]byte(`{"0,0,0": {"label": "", "description": "d"}}`))
	assert.Error(t, err)
}

func TestLoadFromJSONEmptyWorld(t *testing.T) {
	_, err := LoadFromJSON([]byte(`{}`))
	assert.Error(t, err)
}

func TestLoadFromYAML(t *testing.T) {
	m, err := LoadFromYAML([]byte(`
"0,0,0":
  label: Start
  description: |
    The starting room.
"0,1,0":
  label: Loft
  description: Above the start.
`))
	require.NoError(t, err)
	assert.Equal(t, 2, m.RoomCount())

	room, ok := m.RoomAt(Location{Y: 1})
	require.True(t, ok)
	assert.Equal(t, "Loft", room.Label)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "world.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(testWorldJSON), 0644))
	m, err := LoadFromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, 2, m.RoomCount())

	yamlPath := filepath.Join(dir, "world.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`"0,0,0": {label: Solo, description: Alone.}`), 0644))
	m, err = LoadFromFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, 1, m.RoomCount())
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/world.json")
	assert.Error(t, err)
}
