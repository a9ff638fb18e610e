package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage is one picture of a product
type ProductImage struct {
	URL     string `bson:"url" json:"url"`
	AltText string `bson:"altText,omitempty" json:"altText,omitempty"`
}

// Dimensions describes the packaged size of a product
type Dimensions struct {
	Length float64 `bson:"length" json:"length"`
	Width  float64 `bson:"width" json:"width"`
	Height float64 `bson:"height" json:"height"`
}

// Product represents a catalog entry
type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	Price           float64            `bson:"price" json:"price"`
	DiscountPrice   *float64           `bson:"discountPrice,omitempty" json:"discountPrice,omitempty"`
	CountInStock    int                `bson:"countInStock" json:"countInStock"`
	SKU             string             `bson:"sku" json:"sku"`
	Category        string             `bson:"category" json:"category"`
	Brand           string             `bson:"brand,omitempty" json:"brand,omitempty"`
	Sizes           []string           `bson:"sizes" json:"sizes"`
	Colors          []string           `bson:"colors" json:"colors"`
	Collections     string             `bson:"collections" json:"collections"`
	Material        string             `bson:"material,omitempty" json:"material,omitempty"`
	Gender          string             `bson:"gender,omitempty" json:"gender,omitempty"` // "Men", "Women" or "Unisex"
	Images          []ProductImage     `bson:"images" json:"images"`
	IsFeatured      bool               `bson:"isFeatured" json:"isFeatured"`
	IsPublished     bool               `bson:"isPublished" json:"isPublished"`
	Rating          float64            `bson:"rating" json:"rating"`
	NumReviews      int                `bson:"numReviews" json:"numReviews"`
	Tags            []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	User            primitive.ObjectID `bson:"user" json:"user"`
	MetaTitle       string             `bson:"metaTitle,omitempty" json:"metaTitle,omitempty"`
	MetaDescription string             `bson:"metaDescription,omitempty" json:"metaDescription,omitempty"`
	MetaKeywords    string             `bson:"metaKeywords,omitempty" json:"metaKeywords,omitempty"`
	Dimensions      *Dimensions        `bson:"dimensions,omitempty" json:"dimensions,omitempty"`
	Weight          float64            `bson:"weight,omitempty" json:"weight,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// FirstImage returns the URL of the first image, or "" when there is none
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0].URL
}

// EffectivePrice is the price a shopper is charged: the discount price when set.
func (p *Product) EffectivePrice() float64 {
	if p.DiscountPrice != nil {
		return *p.DiscountPrice
	}
	return p.Price
}
