package entity

import "time"

// Category categoría de ítems (jerárquica opcional).
type Category struct {
	ID        string    `json:"id"`
	ParentID  string    `json:"parent_id,omitempty"` // vacío si es raíz
	Name      string    `json:"name"`
	Code      string    `json:"code"` // código único
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
