package assets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/flowgraph/pkg/assets"
	"github.com/aretw0/flowgraph/pkg/domain"
)

func TestGroups_FreshCopies(t *testing.T) {
	first := assets.Groups()
	require.Len(t, first, 5)
	assert.Equal(t, "Subscribers", first[0].Name)

	first[0].Name = "mutated"
	second := assets.Groups()
	assert.Equal(t, "Subscribers", second[0].Name)
}

func TestLanguages(t *testing.T) {
	langs := assets.Languages()
	require.NotEmpty(t, langs)
	assert.Equal(t, assets.English, langs[0])
	assert.Equal(t, assets.Spanish, langs[1])
	for _, l := range langs {
		assert.Equal(t, domain.AssetLanguage, l.Type)
	}
}
