package shapefile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceDBVersion_FindsVersionElementAtAnyDepth(t *testing.T) {
	raw := []byte(`<Collection><Metadata><SwordVersion>v17</SwordVersion></Metadata></Collection>`)
	version, err := referenceDBVersion(raw)
	require.NoError(t, err)
	assert.Equal(t, "v17", version)
}

func TestReferenceDBVersion_ErrorsWhenNoVersionElementPresent(t *testing.T) {
	raw := []byte(`<Collection><Metadata><Name>foo</Name></Metadata></Collection>`)
	_, err := referenceDBVersion(raw)
	assert.Error(t, err)
}
