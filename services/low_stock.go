package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/swarajb-778/StockPilot/models"
)

const (
	DefaultLowStockThreshold = 10
	lowStockDedupWindow      = 24 * time.Hour
	lowStockAlertTitle       = "Low Stock Alert"
)

// LowStockResult reports one scan. Failed counts products whose check or insert errored.
type LowStockResult struct {
	Created int                   `json:"created"`
	Failed  int                   `json:"failed"`
	Alerts  []models.Notification `json:"alerts"`
}

// CheckLowStock creates one stock_alert per product with stockQuantity <= threshold,
// skipping products that already have an alert in the trailing 24 hours.
//
// The dedup check and the insert are separate statements, so two concurrent scans may
// both create an alert for the same product.
func (s *NotificationService) CheckLowStock(ctx context.Context, threshold int) (LowStockResult, error) {
	result := LowStockResult{Alerts: []models.Notification{}}
	if threshold < 0 {
		return result, invalid("threshold", "must not be negative")
	}

	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("stock_quantity <= ?", threshold).
		Order("stock_quantity ASC").
		Find(&products).Error
	if err != nil {
		return result, fmt.Errorf("query low stock products: %w", err)
	}

	since := s.now().Add(-lowStockDedupWindow)
	for _, p := range products {
		alert, err := s.alertProduct(ctx, p, since)
		if err != nil {
			result.Failed++
			slog.Error("low stock alert failed", "product_id", p.ProductID, "error", err)
			continue
		}
		if alert != nil {
			result.Alerts = append(result.Alerts, *alert)
		}
	}
	result.Created = len(result.Alerts)

	if result.Created > 0 {
		s.publishUnread(ctx)
	}
	return result, nil
}

func (s *NotificationService) alertProduct(ctx context.Context, p models.Product, since time.Time) (*models.Notification, error) {
	recent, err := s.hasRecentAlert(ctx, p.ProductID, since)
	if err != nil {
		return nil, err
	}
	if recent {
		return nil, nil
	}

	productID := p.ProductID
	return s.insert(ctx, CreateNotificationInput{
		Type:            models.NotificationStockAlert,
		Title:           lowStockAlertTitle,
		Message:         lowStockMessage(p),
		RelatedEntityID: &productID,
	})
}

// hasRecentAlert matches on related_entity_id. Rows written before that column existed
// only carry the product id inside the message text.
func (s *NotificationService) hasRecentAlert(ctx context.Context, productID string, since time.Time) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("type = ? AND created_at >= ?", models.NotificationStockAlert, since).
		Where(`related_entity_id = ? OR (related_entity_id IS NULL AND message LIKE ? ESCAPE '\')`, productID, likePattern(productID)).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("check recent alert: %w", err)
	}
	return count > 0, nil
}

func lowStockMessage(p models.Product) string {
	return fmt.Sprintf("%s is running low on stock (%d remaining). Product ID: %s",
		p.Name, p.StockQuantity, p.ProductID)
}
