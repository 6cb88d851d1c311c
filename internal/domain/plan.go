package domain

// Plan is a purchasable subscription offering. Plans are immutable once loaded.
type Plan struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Price       Money  `json:"price" yaml:"price"`
	Image       string `json:"image,omitempty" yaml:"image"`
	Description string `json:"description" yaml:"description"`
	// PaymentReference is the static PIX code. Opaque: never parsed.
	PaymentReference string `json:"pixCode,omitempty" yaml:"pix_code"`
}
