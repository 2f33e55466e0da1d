package brochure

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"wanderlust/models"
)

func TestRender(t *testing.T) {
	was := 2900.0
	p := &models.Package{
		ID:            primitive.NewObjectID(),
		Title:         "Côte d'Azur Coastal Walk",
		Slug:          "cote-d-azur-coastal-walk",
		Location:      "Nice, France",
		Duration:      "6 days",
		Description:   "Cliff paths, markets and swims in hidden coves.",
		Price:         2400,
		OriginalPrice: &was,
		Highlights:    []string{"Èze village", "Cap Ferrat loop"},
		Included:      []string{"Hotels", "Breakfast"},
	}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, p, "https://wanderlust.example.com/packages/"+p.ID.Hex()))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 1000)
}

func TestFilename(t *testing.T) {
	p := &models.Package{ID: primitive.NewObjectID(), Slug: "bali-escape"}
	assert.Equal(t, "bali-escape.pdf", Filename(p))

	p.Slug = ""
	assert.Equal(t, p.ID.Hex()+".pdf", Filename(p))
}
