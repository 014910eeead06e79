package models

import "time"

// Product represents a catalog entry.
type Product struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Name         string    `json:"name" bson:"name"`
	Category     string    `json:"category" bson:"category"`
	Price        float64   `json:"price" bson:"price"`
	Description  string    `json:"description" bson:"description"`
	Stock        int       `json:"stock" bson:"stock"`
	ProductImage string    `json:"productImage,omitempty" bson:"productImage,omitempty"` // stored path of the uploaded image
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}
