package models

import "time"

// Order is the commercial order a project is carried out under. Owned by the
// ordering subsystem; only the shape consumed here is modeled.
type Order struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	Name   string `gorm:"size:200;not null" json:"name"`
	UserID *uint  `json:"user_id,omitempty"`
	User   *User  `json:"user,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// Organism is a reference list entry that products can be optimised for
type Organism struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Name       string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CommonName string `gorm:"size:100" json:"common_name,omitempty"`
}

func (Organism) TableName() string {
	return "organisms"
}
