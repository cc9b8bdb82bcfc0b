package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ProductID     string    `gorm:"type:varchar(36);primaryKey" json:"productId"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	Price         float64   `gorm:"not null" json:"price"`
	Rating        *float64  `json:"rating,omitempty"`
	StockQuantity int       `gorm:"not null;default:0;index" json:"stockQuantity"`
	Description   *string   `gorm:"type:text" json:"description,omitempty"`
	ImageURL      *string   `gorm:"type:text" json:"imageUrl,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Sales     []Sale     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"Sales,omitempty"`
	Purchases []Purchase `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"Purchases,omitempty"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ProductID == "" {
		p.ProductID = uuid.NewString()
	}
	return nil
}

type Sale struct {
	SaleID      string    `gorm:"type:varchar(36);primaryKey" json:"saleId"`
	ProductID   string    `gorm:"type:varchar(36);not null;index" json:"productId"`
	Timestamp   time.Time `gorm:"not null;index" json:"timestamp"`
	Quantity    int       `gorm:"not null" json:"quantity"`
	UnitPrice   float64   `gorm:"not null" json:"unitPrice"`
	TotalAmount float64   `gorm:"not null" json:"totalAmount"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.SaleID == "" {
		s.SaleID = uuid.NewString()
	}
	return nil
}

type Purchase struct {
	PurchaseID string    `gorm:"type:varchar(36);primaryKey" json:"purchaseId"`
	ProductID  string    `gorm:"type:varchar(36);not null;index" json:"productId"`
	Timestamp  time.Time `gorm:"not null;index" json:"timestamp"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	UnitCost   float64   `gorm:"not null" json:"unitCost"`
	TotalCost  float64   `gorm:"not null" json:"totalCost"`
}

func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.PurchaseID == "" {
		p.PurchaseID = uuid.NewString()
	}
	return nil
}
