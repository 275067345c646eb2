package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Variation is a purchasable option of a product (one SKU).
type Variation struct {
	SKU   string  `bson:"sku,omitempty" json:"sku,omitempty"`
	Color string  `bson:"color,omitempty" json:"color,omitempty"`
	Size  string  `bson:"size,omitempty" json:"size,omitempty"`
	Stock int     `bson:"stock" json:"stock"`
	Price float64 `bson:"price,omitempty" json:"price,omitempty"`
}

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Brand       string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Rating      float64            `bson:"rating" json:"rating"`
	Labels      []string           `bson:"labels,omitempty" json:"labels,omitempty"`
	Images      []string           `bson:"images,omitempty" json:"images,omitempty"`
	Category    primitive.ObjectID `bson:"category,omitempty" json:"category,omitempty"`
	Subcategory primitive.ObjectID `bson:"subcategory,omitempty" json:"subcategory,omitempty"`
	Variations  []Variation        `bson:"variations,omitempty" json:"variations,omitempty"`
	Status      string             `bson:"status" json:"status"` // draft, published, archived
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type Category struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name           string             `bson:"name" json:"name"`
	Slug           string             `bson:"slug" json:"slug"`
	Images         []string           `bson:"images" json:"images"`
	ParentCategory primitive.ObjectID `bson:"parentCategory,omitempty" json:"parentCategory,omitempty"`
	Description    string             `bson:"description,omitempty" json:"description,omitempty"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	Order          int                `bson:"order" json:"order"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeCategory caps the image list at four entries and lowercases the
// slug before the document is written.
func NormalizeCategory(c *Category) {
	c.Name = strings.TrimSpace(c.Name)
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if len(c.Images) > 4 {
		c.Images = c.Images[:4]
	}
	if c.Images == nil {
		c.Images = []string{}
	}
}
