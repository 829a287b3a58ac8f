package catalog

// Product represents a sellable item tracked by the store.
type Product struct {
	ID       int64   `json:"id"`
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
}

// ProductForm carries fields for creating a product.
type ProductForm struct {
	Barcode  string  `json:"barcode" validate:"required"`
	Name     string  `json:"name" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
	Stock    int     `json:"stock"`
	Category string  `json:"category" validate:"required"`
}

// UpdateProductRequest carries optional fields for partial updates.
type UpdateProductRequest struct {
	Barcode  *string  `json:"barcode"`
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Stock    *int     `json:"stock"`
	Category *string  `json:"category"`
}
