package domain

import (
	"time"

	"github.com/google/uuid"
)

// Product represents a catalog item (laptops, accessories, peripherals)
type Product struct {
	ID          uuid.UUID         `json:"id" db:"id"`
	Name        string            `json:"name" db:"name"`
	Brand       string            `json:"brand" db:"brand"`
	Category    string            `json:"category" db:"category"`
	Processor   string            `json:"processor" db:"processor"`
	Price       float64           `json:"price" db:"price"`
	Stock       int               `json:"stock" db:"stock"`
	ImageURL    string            `json:"image_url" db:"image_url"`
	Images      []string          `json:"images" db:"images"`
	Specs       map[string]string `json:"specs" db:"specs"`
	Description string            `json:"description" db:"description"`
	Featured    bool              `json:"featured" db:"featured"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at" db:"updated_at"`
}
