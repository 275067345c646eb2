package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	c := &Category{
		Name:   "  Home & Garden ",
		Slug:   " Home-Garden ",
		Images: []string{"a", "b", "c", "d", "e", "f"},
	}
	NormalizeCategory(c)

	assert.Equal(t, "Home & Garden", c.Name)
	assert.Equal(t, "home-garden", c.Slug)
	assert.Len(t, c.Images, 4, "image list is capped")
}

func TestNormalizeCategoryNilImages(t *testing.T) {
	c := &Category{Name: "Tech", Slug: "tech"}
	NormalizeCategory(c)
	assert.NotNil(t, c.Images)
	assert.Empty(t, c.Images)
}
