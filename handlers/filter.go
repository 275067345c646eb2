package handlers

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductFilter is the typed form of the /products/filter query string. Only
// the fields enumerated in filterParams are accepted; anything else is
// rejected instead of being passed through to the database.
type ProductFilter struct {
	Category  string
	Brands    []string
	MinPrice  *float64
	MaxPrice  *float64
	Labels    []string
	MinRating *float64
	Colors    []string
	Sizes     []string
	SKUs      []string
	InStock   *bool
	Search    string
	Page      int
	Limit     int
	SortField string
	SortAsc   bool
	Sorted    bool
}

var filterParams = map[string]bool{
	"category": true, "brand": true, "minPrice": true, "maxPrice": true,
	"labels": true, "rating": true, "color": true, "size": true,
	"inStock": true, "search": true, "variations": true, "variationSku": true,
	"page": true, "limit": true, "sortBy": true,
}

var sortFields = map[string]bool{
	"price": true, "rating": true, "name": true, "createdAt": true,
}

// splitCSV flattens repeated and comma-separated params into one list.
func splitCSV(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// ParseProductFilter validates the raw query string into a ProductFilter.
func ParseProductFilter(query url.Values) (*ProductFilter, error) {
	for key := range query {
		if !filterParams[key] {
			return nil, fmt.Errorf("unrecognized filter parameter %q", key)
		}
	}

	f := &ProductFilter{Page: 1, Limit: 50}

	f.Category = query.Get("category")
	f.Brands = splitCSV(query["brand"])
	f.Labels = splitCSV(query["labels"])
	f.Colors = splitCSV(query["color"])
	f.Sizes = splitCSV(query["size"])
	f.SKUs = splitCSV(append(query["variations"], query["variationSku"]...))
	f.Search = query.Get("search")

	if v := query.Get("minPrice"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("minPrice must be a number")
		}
		f.MinPrice = &n
	}
	if v := query.Get("maxPrice"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("maxPrice must be a number")
		}
		f.MaxPrice = &n
	}
	if v := query.Get("rating"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("rating must be a number")
		}
		f.MinRating = &n
	}
	if v := query.Get("inStock"); v != "" {
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return nil, fmt.Errorf("inStock must be true or false")
		}
		f.InStock = &b
	}
	if v := query.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("page must be a positive integer")
		}
		f.Page = n
	}
	if v := query.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("limit must be a positive integer")
		}
		f.Limit = n
	}
	if v := query.Get("sortBy"); v != "" {
		field, dir, _ := strings.Cut(v, ":")
		if !sortFields[field] {
			return nil, fmt.Errorf("unsupported sort field %q", field)
		}
		f.SortField = field
		f.SortAsc = !strings.EqualFold(dir, "desc")
		f.Sorted = true
	}

	return f, nil
}

// Query builds the Mongo filter document.
func (f *ProductFilter) Query() bson.M {
	filter := bson.M{}

	if f.Category != "" {
		if id, err := primitive.ObjectIDFromHex(f.Category); err == nil {
			filter["category"] = id
		} else {
			filter["category"] = f.Category
		}
	}

	if len(f.Brands) > 0 {
		patterns := make([]primitive.Regex, len(f.Brands))
		for i, b := range f.Brands {
			patterns[i] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(b) + "$", Options: "i"}
		}
		filter["brand"] = bson.M{"$in": patterns}
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}

	if len(f.Labels) > 0 {
		filter["labels"] = bson.M{"$in": f.Labels}
	}

	if f.MinRating != nil {
		filter["rating"] = bson.M{"$gte": *f.MinRating}
	}

	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"description": pattern},
		}
	}

	// All variation predicates must hold on a single variation element.
	variation := bson.M{}
	if len(f.Colors) > 0 {
		patterns := make([]primitive.Regex, len(f.Colors))
		for i, v := range f.Colors {
			patterns[i] = primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
		}
		variation["color"] = bson.M{"$in": patterns}
	}
	if len(f.Sizes) > 0 {
		patterns := make([]primitive.Regex, len(f.Sizes))
		for i, v := range f.Sizes {
			patterns[i] = primitive.Regex{Pattern: regexp.QuoteMeta(v), Options: "i"}
		}
		variation["size"] = bson.M{"$in": patterns}
	}
	if len(f.SKUs) > 0 {
		variation["sku"] = bson.M{"$in": f.SKUs}
	}
	if f.InStock != nil {
		if *f.InStock {
			variation["stock"] = bson.M{"$gt": 0}
		} else {
			variation["stock"] = bson.M{"$lte": 0}
		}
	}
	if len(variation) > 0 {
		filter["variations"] = bson.M{"$elemMatch": variation}
	}

	return filter
}

// Sort returns the sort document, or nil when no sort was requested.
func (f *ProductFilter) Sort() bson.D {
	if !f.Sorted {
		return nil
	}
	order := 1
	if !f.SortAsc {
		order = -1
	}
	return bson.D{{Key: f.SortField, Value: order}}
}

func (f *ProductFilter) Skip() int64 {
	return int64((f.Page - 1) * f.Limit)
}
