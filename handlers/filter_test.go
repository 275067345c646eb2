package handlers

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseProductFilterRejectsUnknownParams(t *testing.T) {
	_, err := ParseProductFilter(url.Values{"priceeee": {"10"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "priceeee")
}

func TestParseProductFilterDefaults(t *testing.T) {
	f, err := ParseProductFilter(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 50, f.Limit)
	assert.False(t, f.Sorted)
	assert.Empty(t, f.Query())
}

func TestParseProductFilterValidation(t *testing.T) {
	cases := map[string]url.Values{
		"bad minPrice": {"minPrice": {"cheap"}},
		"bad maxPrice": {"maxPrice": {"a lot"}},
		"bad rating":   {"rating": {"five"}},
		"bad inStock":  {"inStock": {"maybe"}},
		"zero page":    {"page": {"0"}},
		"bad sort":     {"sortBy": {"color:asc"}},
	}
	for name, query := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProductFilter(query)
			assert.Error(t, err)
		})
	}
}

func TestParseProductFilterCSVAndRepeats(t *testing.T) {
	f, err := ParseProductFilter(url.Values{
		"brand": {"nike, adidas", "puma"},
		"color": {"red,blue"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"nike", "adidas", "puma"}, f.Brands)
	assert.Equal(t, []string{"red", "blue"}, f.Colors)
}

func TestFilterQueryPriceRange(t *testing.T) {
	f, err := ParseProductFilter(url.Values{"minPrice": {"10"}, "maxPrice": {"99.5"}})
	require.NoError(t, err)

	q := f.Query()
	price, ok := q["price"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, 10.0, price["$gte"])
	assert.Equal(t, 99.5, price["$lte"])
}

func TestFilterQueryCategoryObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	f, err := ParseProductFilter(url.Values{"category": {id.Hex()}})
	require.NoError(t, err)
	assert.Equal(t, id, f.Query()["category"])

	f, err = ParseProductFilter(url.Values{"category": {"shoes"}})
	require.NoError(t, err)
	assert.Equal(t, "shoes", f.Query()["category"])
}

func TestFilterQueryVariationsShareOneElemMatch(t *testing.T) {
	f, err := ParseProductFilter(url.Values{
		"color":   {"red"},
		"size":    {"M"},
		"inStock": {"true"},
	})
	require.NoError(t, err)

	q := f.Query()
	elem, ok := q["variations"].(bson.M)
	require.True(t, ok)
	match, ok := elem["$elemMatch"].(bson.M)
	require.True(t, ok, "color, size and stock must match the same variation")

	assert.Contains(t, match, "color")
	assert.Contains(t, match, "size")
	assert.Equal(t, bson.M{"$gt": 0}, match["stock"])
}

func TestFilterQueryOutOfStock(t *testing.T) {
	f, err := ParseProductFilter(url.Values{"inStock": {"false"}})
	require.NoError(t, err)

	match := f.Query()["variations"].(bson.M)["$elemMatch"].(bson.M)
	assert.Equal(t, bson.M{"$lte": 0}, match["stock"])
}

func TestFilterQueryBrandAnchoredCaseInsensitive(t *testing.T) {
	f, err := ParseProductFilter(url.Values{"brand": {"Ni+ke"}})
	require.NoError(t, err)

	in := f.Query()["brand"].(bson.M)["$in"].([]primitive.Regex)
	require.Len(t, in, 1)
	assert.Equal(t, `^Ni\+ke$`, in[0].Pattern, "regex metacharacters are escaped")
	assert.Equal(t, "i", in[0].Options)
}

func TestFilterQuerySearch(t *testing.T) {
	f, err := ParseProductFilter(url.Values{"search": {"running shoes"}})
	require.NoError(t, err)

	or, ok := f.Query()["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 2)
}

func TestFilterSortAndSkip(t *testing.T) {
	f, err := ParseProductFilter(url.Values{
		"sortBy": {"price:desc"},
		"page":   {"3"},
		"limit":  {"20"},
	})
	require.NoError(t, err)

	assert.Equal(t, bson.D{{Key: "price", Value: -1}}, f.Sort())
	assert.Equal(t, int64(40), f.Skip())

	f, err = ParseProductFilter(url.Values{"sortBy": {"rating"}})
	require.NoError(t, err)
	assert.Equal(t, bson.D{{Key: "rating", Value: 1}}, f.Sort(), "direction defaults to ascending")
}
