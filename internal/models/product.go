// internal/models/product.go
package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Category struct {
	BaseModel
	Name     string    `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Products []Product `json:"products,omitempty" gorm:"foreignKey:CategoryID"`
}

type Product struct {
	BaseModel
	UserID      uuid.UUID      `json:"user_id" gorm:"type:uuid;not null;index"`
	Name        string         `json:"name" gorm:"size:255;not null"`
	Description string         `json:"description" gorm:"type:text;not null"`
	Price       float64        `json:"price" gorm:"type:decimal(10,2);not null"`
	IsPublished bool           `json:"is_published" gorm:"default:false;index"`
	CategoryID  *uuid.UUID     `json:"category_id" gorm:"type:uuid;index"`
	Tags        pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Relationships
	User     User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	Media    []Media   `json:"media,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// Media is one uploaded image bound to a product. For any product with at
// least one row, exactly one row carries IsDefault=true; the media service
// maintains that invariant on every add, delete and reassignment.
type Media struct {
	BaseModel
	ProductID    uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	UploadedByID uuid.UUID `json:"uploaded_by_id" gorm:"type:uuid;not null"`
	URL          string    `json:"url" gorm:"size:512;not null"`
	StorageKey   string    `json:"-" gorm:"size:512;not null"`
	IsDefault    bool      `json:"is_default" gorm:"default:false"`
}

func (Media) TableName() string { return "media" }
