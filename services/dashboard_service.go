package services

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/swarajb-778/StockPilot/models"
)

const (
	popularProductLimit = 15
	dashboardHistory    = 180
)

type Series string

const (
	SalesSeries     Series = "sales"
	PurchasesSeries Series = "purchases"
	ExpensesSeries  Series = "expenses"
)

func ParseSeries(v string) (Series, error) {
	switch s := Series(v); s {
	case SalesSeries, PurchasesSeries, ExpensesSeries:
		return s, nil
	}
	return "", invalid("series", "must be sales, purchases or expenses")
}

type DashboardMetrics struct {
	PopularProducts          []models.Product           `json:"popularProducts"`
	SalesSummary             []models.SalesSummary      `json:"salesSummary"`
	PurchaseSummary          []models.PurchaseSummary   `json:"purchaseSummary"`
	ExpenseSummary           []models.ExpenseSummary    `json:"expenseSummary"`
	ExpenseByCategorySummary []models.ExpenseByCategory `json:"expenseByCategorySummary"`
}

type SeriesSummary struct {
	Series                  Series    `json:"series"`
	Timeframe               Timeframe `json:"timeframe"`
	Buckets                 []Bucket  `json:"buckets"`
	Total                   float64   `json:"total"`
	AverageChangePercentage float64   `json:"averageChangePercentage"`
}

// DashboardService answers read-only dashboard queries.
type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

func (s *DashboardService) Metrics(ctx context.Context) (*DashboardMetrics, error) {
	db := s.db.WithContext(ctx)
	m := &DashboardMetrics{
		PopularProducts:          []models.Product{},
		SalesSummary:             []models.SalesSummary{},
		PurchaseSummary:          []models.PurchaseSummary{},
		ExpenseSummary:           []models.ExpenseSummary{},
		ExpenseByCategorySummary: []models.ExpenseByCategory{},
	}

	if err := db.Order("stock_quantity DESC").Limit(popularProductLimit).Find(&m.PopularProducts).Error; err != nil {
		return nil, fmt.Errorf("load popular products: %w", err)
	}
	if err := db.Order("date DESC").Limit(dashboardHistory).Find(&m.SalesSummary).Error; err != nil {
		return nil, fmt.Errorf("load sales summary: %w", err)
	}
	if err := db.Order("date DESC").Limit(dashboardHistory).Find(&m.PurchaseSummary).Error; err != nil {
		return nil, fmt.Errorf("load purchase summary: %w", err)
	}
	if err := db.Order("date DESC").Limit(dashboardHistory).Find(&m.ExpenseSummary).Error; err != nil {
		return nil, fmt.Errorf("load expense summary: %w", err)
	}
	if err := db.Order("date DESC").Limit(dashboardHistory).Find(&m.ExpenseByCategorySummary).Error; err != nil {
		return nil, fmt.Errorf("load expense by category: %w", err)
	}
	return m, nil
}

// ExpensesByCategory lists category rows newest first.
func (s *DashboardService) ExpensesByCategory(ctx context.Context) ([]models.ExpenseByCategory, error) {
	rows := []models.ExpenseByCategory{}
	if err := s.db.WithContext(ctx).Order("date DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list expenses by category: %w", err)
	}
	return rows, nil
}

// Summarize aggregates a whole daily series into chart buckets.
func (s *DashboardService) Summarize(ctx context.Context, series Series, tf Timeframe) (*SeriesSummary, error) {
	points, err := s.loadSeries(ctx, series)
	if err != nil {
		return nil, err
	}
	buckets, err := Aggregate(points, tf)
	if err != nil {
		return nil, err
	}

	out := &SeriesSummary{Series: series, Timeframe: tf, Buckets: buckets}
	for _, b := range buckets {
		out.Total += b.Total
		out.AverageChangePercentage += b.ChangePercentage
	}
	if len(buckets) > 0 {
		out.AverageChangePercentage /= float64(len(buckets))
	}
	return out, nil
}

func (s *DashboardService) loadSeries(ctx context.Context, series Series) ([]DailyPoint, error) {
	db := s.db.WithContext(ctx).Order("date ASC")

	switch series {
	case SalesSeries:
		var rows []models.SalesSummary
		if err := db.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load sales summary: %w", err)
		}
		points := make([]DailyPoint, len(rows))
		for i, r := range rows {
			points[i] = DailyPoint{Date: r.Date, Value: r.TotalValue, ChangePercentage: deref(r.ChangePercentage)}
		}
		return points, nil
	case PurchasesSeries:
		var rows []models.PurchaseSummary
		if err := db.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load purchase summary: %w", err)
		}
		points := make([]DailyPoint, len(rows))
		for i, r := range rows {
			points[i] = DailyPoint{Date: r.Date, Value: r.TotalPurchased, ChangePercentage: deref(r.ChangePercentage)}
		}
		return points, nil
	case ExpensesSeries:
		var rows []models.ExpenseSummary
		if err := db.Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("load expense summary: %w", err)
		}
		points := make([]DailyPoint, len(rows))
		for i, r := range rows {
			points[i] = DailyPoint{Date: r.Date, Value: r.TotalExpenses, ChangePercentage: deref(r.ChangePercentage)}
		}
		return points, nil
	}
	return nil, invalid("series", "must be sales, purchases or expenses")
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
