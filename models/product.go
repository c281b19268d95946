package models

import "time"

type Product struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Enabled           bool      `gorm:"not null;default:false" json:"enabled"`
	Name              string    `gorm:"size:50;not null" json:"name"`
	Slug              string    `gorm:"size:50;uniqueIndex;not null" json:"slug"`
	Stock             int       `gorm:"not null;default:0" json:"stock"`
	Description       string    `gorm:"size:100" json:"description"`
	Price             float64   `gorm:"not null" json:"price"`
	PriceWithDiscount float64   `gorm:"not null" json:"price_with_discount"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Images  []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"images"`
	Options []ProductOption `gorm:"foreignKey:ProductID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"options"`

	// Loaded from product_categories; never written through GORM associations.
	CategoryIDs []uint `gorm:"-" json:"category_ids"`
}

func (Product) TableName() string {
	return "products"
}

// ProductImage belongs to exactly one product and goes away with it.
type ProductImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProductID uint      `gorm:"column:id_product;not null;index" json:"-"`
	Enabled   bool      `gorm:"not null;default:false" json:"enabled"`
	Path      string    `gorm:"size:1000;not null" json:"path"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}

func (ProductImage) TableName() string {
	return "product_images"
}

type ProductOption struct {
	ID        uint                 `gorm:"primaryKey" json:"id"`
	ProductID uint                 `gorm:"column:id_product;not null;index" json:"-"`
	Title     string               `gorm:"size:100;not null" json:"title"`
	Shape     string               `gorm:"size:10;not null;default:square" json:"shape"`
	Radius    int                  `gorm:"not null;default:0" json:"radius"`
	Type      string               `gorm:"size:10;not null;default:text" json:"type"`
	Values    []ProductOptionValue `gorm:"foreignKey:OptionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"values"`
	CreatedAt time.Time            `gorm:"autoCreateTime" json:"-"`
	UpdatedAt time.Time            `gorm:"autoUpdateTime" json:"-"`
}

func (ProductOption) TableName() string {
	return "product_options"
}

type ProductOptionValue struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	OptionID uint   `gorm:"column:id_option;not null;index" json:"-"`
	Value    string `gorm:"size:100;not null" json:"value"`
}

func (ProductOptionValue) TableName() string {
	return "product_option_values"
}

// ProductCategory is the many-to-many join between products and categories.
// Neither side owns the other; removing either end only drops the join rows.
type ProductCategory struct {
	ProductID  uint     `gorm:"column:id_product;primaryKey" json:"id_product"`
	CategoryID uint     `gorm:"column:id_category;primaryKey" json:"id_category"`
	Product    Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Category   Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ProductCategory) TableName() string {
	return "product_categories"
}
