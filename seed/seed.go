// Package seed resets the database and loads fixture data from JSON files.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gorm.io/gorm"

	"github.com/swarajb-778/StockPilot/models"
)

// Entity binds a fixture file name to the table it fills.
type Entity struct {
	Name  string
	clear func(db *gorm.DB) error
	load  func(db *gorm.DB, data []byte) (created, failed int, err error)
}

func entity[T any](name string) Entity {
	return Entity{
		Name: name,
		clear: func(db *gorm.DB) error {
			return db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(new(T)).Error
		},
		load: func(db *gorm.DB, data []byte) (int, int, error) {
			var rows []T
			if err := json.Unmarshal(data, &rows); err != nil {
				return 0, 0, fmt.Errorf("decode %s: %w", name, err)
			}
			created, failed := 0, 0
			for i := range rows {
				if err := db.Create(&rows[i]).Error; err != nil {
					failed++
					slog.Warn("seed row failed", "entity", name, "index", i, "error", err)
					continue
				}
				created++
			}
			return created, failed, nil
		},
	}
}

// Entities is the load order; parents come before the rows that reference them.
var Entities = []Entity{
	entity[models.Product]("products"),
	entity[models.User]("users"),
	entity[models.ExpenseSummary]("expenseSummary"),
	entity[models.Sale]("sales"),
	entity[models.SalesSummary]("salesSummary"),
	entity[models.Purchase]("purchases"),
	entity[models.PurchaseSummary]("purchaseSummary"),
	entity[models.Expense]("expenses"),
	entity[models.ExpenseByCategory]("expenseByCategory"),
	entity[models.Notification]("notifications"),
}

// Result counts the rows handled for one entity.
type Result struct {
	Entity  string
	Created int
	Failed  int
	Skipped bool
}

// Reset deletes every seeded table, children first.
func Reset(ctx context.Context, db *gorm.DB) error {
	db = db.WithContext(ctx)
	for i := len(Entities) - 1; i >= 0; i-- {
		e := Entities[i]
		if err := e.clear(db); err != nil {
			return fmt.Errorf("clear %s: %w", e.Name, err)
		}
		slog.Info("cleared table", "entity", e.Name)
	}
	return nil
}

// Run resets the database and loads <entity>.json from dir for every entity.
// Missing files are skipped; rows that fail to insert are logged and counted.
func Run(ctx context.Context, db *gorm.DB, dir string) ([]Result, error) {
	if err := Reset(ctx, db); err != nil {
		return nil, err
	}

	db = db.WithContext(ctx)
	results := make([]Result, 0, len(Entities))
	for _, e := range Entities {
		path := filepath.Join(dir, e.Name+".json")
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("seed file not found, skipping", "file", path)
			results = append(results, Result{Entity: e.Name, Skipped: true})
			continue
		}
		if err != nil {
			return results, fmt.Errorf("read %s: %w", path, err)
		}

		created, failed, err := e.load(db, data)
		if err != nil {
			return results, err
		}
		slog.Info("seeded table", "entity", e.Name, "created", created, "failed", failed)
		results = append(results, Result{Entity: e.Name, Created: created, Failed: failed})
	}
	return results, nil
}
