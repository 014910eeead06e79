package models

import "time"

// Defaults applied to every new order. Nothing transitions them afterwards.
const (
	OrderStatusPending   = "pending"
	PaymentStatusPending = "pending"
)

// LineItem is a single product reference within an order.
type LineItem struct {
	ProductID string `json:"productId" bson:"productId"`
	Quantity  int    `json:"quantity" bson:"quantity"`
}

// Address is the shipping destination of an order.
type Address struct {
	Street     string `json:"street" bson:"street"`
	City       string `json:"city" bson:"city"`
	State      string `json:"state" bson:"state"`
	PostalCode string `json:"postalCode" bson:"postalCode"`
	Country    string `json:"country" bson:"country"`
}

// Order represents a customer order.
// UserID and the product ids are not checked for existence.
type Order struct {
	ID              string     `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	UserID          string     `json:"userId" bson:"userId" gorm:"index;type:varchar(36)"`
	Products        []LineItem `json:"products" bson:"products" gorm:"serializer:json"`
	ShippingAddress Address    `json:"shippingAddress" bson:"shippingAddress" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   string     `json:"paymentMethod" bson:"paymentMethod"`
	TotalAmount     float64    `json:"totalAmount" bson:"totalAmount"` // as supplied by the client
	Status          string     `json:"status" bson:"status"`
	PaymentStatus   string     `json:"paymentStatus" bson:"paymentStatus"`
	OrderDate       time.Time  `json:"orderDate" bson:"orderDate"`
}
