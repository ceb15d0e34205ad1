package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMetadata(t *testing.T) {
	dir := t.TempDir()
	doc := `
subjectID: subject07
mass_kg: 72.5
height_m: 1.78
gender_mf: f
openSimModel: LaiUhlrich2022
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sessionMetadata.yaml"), []byte(doc), 0o644))

	meta, err := LoadMetadata(dir)
	require.NoError(t, err)
	assert.Equal(t, "subject07", meta.SubjectID)
	assert.InDelta(t, 1.78, meta.HeightM, 1e-12)
	assert.InDelta(t, 72.5, meta.MassKg, 1e-12)
	assert.Equal(t, "f", meta.Gender)
}

func TestLoadMetadataMissingHeight(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sessionMetadata.yaml"), []byte("subjectID: s1\n"), 0o644))

	_, err := LoadMetadata(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "height")
}

func TestLoadMetadataMissingFile(t *testing.T) {
	_, err := LoadMetadata(t.TempDir())
	assert.Error(t, err)
}
