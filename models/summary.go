package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Daily summary rows feeding the dashboard charts.

type SalesSummary struct {
	SalesSummaryID   string    `gorm:"type:varchar(36);primaryKey" json:"salesSummaryId"`
	TotalValue       float64   `gorm:"not null" json:"totalValue"`
	ChangePercentage *float64  `json:"changePercentage,omitempty"`
	Date             time.Time `gorm:"not null;index" json:"date"`
}

func (s *SalesSummary) BeforeCreate(tx *gorm.DB) error {
	if s.SalesSummaryID == "" {
		s.SalesSummaryID = uuid.NewString()
	}
	return nil
}

type PurchaseSummary struct {
	PurchaseSummaryID string    `gorm:"type:varchar(36);primaryKey" json:"purchaseSummaryId"`
	TotalPurchased    float64   `gorm:"not null" json:"totalPurchased"`
	ChangePercentage  *float64  `json:"changePercentage,omitempty"`
	Date              time.Time `gorm:"not null;index" json:"date"`
}

func (s *PurchaseSummary) BeforeCreate(tx *gorm.DB) error {
	if s.PurchaseSummaryID == "" {
		s.PurchaseSummaryID = uuid.NewString()
	}
	return nil
}

type ExpenseSummary struct {
	ExpenseSummaryID string    `gorm:"type:varchar(36);primaryKey" json:"expenseSummaryId"`
	TotalExpenses    float64   `gorm:"not null" json:"totalExpenses"`
	ChangePercentage *float64  `json:"changePercentage,omitempty"`
	Date             time.Time `gorm:"not null;index" json:"date"`

	ExpenseByCategory []ExpenseByCategory `gorm:"foreignKey:ExpenseSummaryID;constraint:OnDelete:CASCADE;" json:"-"`
}

func (s *ExpenseSummary) BeforeCreate(tx *gorm.DB) error {
	if s.ExpenseSummaryID == "" {
		s.ExpenseSummaryID = uuid.NewString()
	}
	return nil
}

type ExpenseByCategory struct {
	ExpenseByCategoryID string    `gorm:"type:varchar(36);primaryKey" json:"expenseByCategorySummaryId"`
	ExpenseSummaryID    string    `gorm:"type:varchar(36);not null;index" json:"expenseSummaryId"`
	Category            string    `gorm:"size:100;not null" json:"category"`
	Amount              int64     `gorm:"not null" json:"amount"`
	Date                time.Time `gorm:"not null;index" json:"date"`
}

func (ExpenseByCategory) TableName() string { return "expense_by_category" }

func (e *ExpenseByCategory) BeforeCreate(tx *gorm.DB) error {
	if e.ExpenseByCategoryID == "" {
		e.ExpenseByCategoryID = uuid.NewString()
	}
	return nil
}

type Expense struct {
	ExpenseID string    `gorm:"type:varchar(36);primaryKey" json:"expenseId"`
	Category  string    `gorm:"size:100;not null" json:"category"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Timestamp time.Time `gorm:"not null;index" json:"timestamp"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) error {
	if e.ExpenseID == "" {
		e.ExpenseID = uuid.NewString()
	}
	return nil
}
