package models

import "time"

// RoleCustomer is assigned to every self-registered user.
const RoleCustomer = "customer"

// User represents a registered customer account.
type User struct {
	ID          string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	Username    string    `json:"username" bson:"username" gorm:"uniqueIndex;type:varchar(20);not null"`
	Password    string    `json:"-" bson:"password" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialised
	Email       string    `json:"email" bson:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	FirstName   string    `json:"firstName,omitempty" bson:"firstName,omitempty"`
	LastName    string    `json:"lastName,omitempty" bson:"lastName,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty" gorm:"type:varchar(12)"`
	DateOfBirth string    `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty" gorm:"type:varchar(10)"`
	Role        string    `json:"role" bson:"role" gorm:"type:varchar(32);default:customer"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
}
