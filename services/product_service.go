package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/swarajb-778/StockPilot/models"
)

const (
	recentActivityLimit = 10
	imageCleanupTimeout = 30 * time.Second
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

// ObjectStore keeps product images. Put returns the public URL of the stored object.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

type ImageInput struct {
	Filename string
	Data     []byte
}

type CreateProductInput struct {
	Name          string
	Price         float64
	StockQuantity int
	Rating        *float64
	Description   *string
	Image         *ImageInput
}

// UpdateProductInput carries only the supplied fields; nil means keep the stored value.
type UpdateProductInput struct {
	Name          *string
	Price         *float64
	StockQuantity *int
	Rating        *float64
	Description   *string
	Image         *ImageInput
}

type ProductService struct {
	db            *gorm.DB
	store         ObjectStore
	maxImageBytes int64

	cleanup sync.WaitGroup
}

// NewProductService wires the product store. store may be nil when image storage
// is not configured; image uploads are then rejected.
func NewProductService(db *gorm.DB, store ObjectStore, maxImageBytes int64) *ProductService {
	return &ProductService{db: db, store: store, maxImageBytes: maxImageBytes}
}

// List matches search case-insensitively against the product name.
func (s *ProductService) List(ctx context.Context, search string) ([]models.Product, error) {
	q := s.db.WithContext(ctx).Order("name ASC")
	if term := strings.ToLower(strings.TrimSpace(search)); term != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(term))
	}

	products := []models.Product{}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get loads a product with its ten most recent sales and purchases.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).
		Preload("Sales", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC").Limit(recentActivityLimit)
		}).
		Preload("Purchases", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC").Limit(recentActivityLimit)
		}).
		First(&p, "product_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (s *ProductService) Create(ctx context.Context, in CreateProductInput) (*models.Product, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name", "is required")
	}
	if err := validateAmounts(&in.Price, &in.StockQuantity, in.Rating); err != nil {
		return nil, err
	}

	p := &models.Product{
		Name:          name,
		Price:         in.Price,
		StockQuantity: in.StockQuantity,
		Rating:        in.Rating,
		Description:   nonEmpty(in.Description),
	}

	if in.Image != nil {
		url, err := s.uploadImage(ctx, name, *in.Image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = &url
	}

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		if p.ImageURL != nil {
			s.deleteImageLater(*p.ImageURL)
		}
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update merges the supplied fields. A replaced image is removed from the store
// after the record is saved; that removal never fails the update.
func (s *ProductService) Update(ctx context.Context, id string, in UpdateProductInput) (*models.Product, error) {
	existing, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalid("name", "must not be empty")
		}
		updates["name"] = name
	}
	if err := validateAmounts(in.Price, in.StockQuantity, in.Rating); err != nil {
		return nil, err
	}
	if in.Price != nil {
		updates["price"] = *in.Price
	}
	if in.StockQuantity != nil {
		updates["stock_quantity"] = *in.StockQuantity
	}
	if in.Rating != nil {
		updates["rating"] = *in.Rating
	}
	if in.Description != nil {
		updates["description"] = nonEmpty(in.Description)
	}

	var newURL string
	if in.Image != nil {
		name := existing.Name
		if n, ok := updates["name"].(string); ok {
			name = n
		}
		newURL, err = s.uploadImage(ctx, name, *in.Image)
		if err != nil {
			return nil, err
		}
		updates["image_url"] = newURL
	}

	if len(updates) > 0 {
		err = s.db.WithContext(ctx).
			Model(&models.Product{}).
			Where("product_id = ?", id).
			Updates(updates).Error
		if err != nil {
			if newURL != "" {
				s.deleteImageLater(newURL)
			}
			return nil, fmt.Errorf("update product: %w", err)
		}
	}

	if newURL != "" && existing.ImageURL != nil {
		s.deleteImageLater(*existing.ImageURL)
	}
	return s.find(ctx, id)
}

// AttachImage replaces the product image.
func (s *ProductService) AttachImage(ctx context.Context, id string, img ImageInput) (*models.Product, error) {
	return s.Update(ctx, id, UpdateProductInput{Image: &img})
}

// Delete removes the record, then the stored image on a best-effort basis.
func (s *ProductService) Delete(ctx context.Context, id string) error {
	existing, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.Sale{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		res := tx.Where("product_id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("product", id)
		}
		return nil
	})
	if errors.Is(err, ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if existing.ImageURL != nil {
		s.deleteImageLater(*existing.ImageURL)
	}
	return nil
}

// Wait blocks until pending image cleanups finish.
func (s *ProductService) Wait() {
	s.cleanup.Wait()
}

func (s *ProductService) find(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := s.db.WithContext(ctx).First(&p, "product_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("product", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

func (s *ProductService) uploadImage(ctx context.Context, productName string, img ImageInput) (string, error) {
	if s.store == nil {
		return "", invalid("image", "image storage is not configured")
	}
	if len(img.Data) == 0 {
		return "", invalid("image", "is empty")
	}
	if s.maxImageBytes > 0 && int64(len(img.Data)) > s.maxImageBytes {
		return "", invalid("image", "exceeds %d bytes", s.maxImageBytes)
	}

	mt := mimetype.Detect(img.Data)
	if !mimetype.EqualsAny(mt.String(), allowedImageTypes...) {
		return "", invalid("image", "only jpeg, png, gif and webp images are allowed")
	}

	url, err := s.store.Put(ctx, imageKey(productName, mt.Extension()), img.Data, mt.String())
	if err != nil {
		return "", fmt.Errorf("upload product image: %w", err)
	}
	return url, nil
}

// deleteImageLater removes an object in the background and only logs failures.
func (s *ProductService) deleteImageLater(url string) {
	if s.store == nil || url == "" {
		return
	}
	s.cleanup.Add(1)
	go func() {
		defer s.cleanup.Done()
		ctx, cancel := context.WithTimeout(context.Background(), imageCleanupTimeout)
		defer cancel()
		if err := s.store.Delete(ctx, url); err != nil {
			slog.Warn("product image cleanup failed", "url", url, "error", err)
		}
	}()
}

func imageKey(productName, ext string) string {
	base := slug.Make(productName)
	if base == "" {
		base = "product"
	}
	return fmt.Sprintf("products/%s-%s%s", base, uuid.NewString(), ext)
}

func validateAmounts(price *float64, stock *int, rating *float64) error {
	if price != nil {
		if !finite(*price) {
			return invalid("price", "must be a finite number")
		}
		if *price < 0 {
			return invalid("price", "must not be negative")
		}
	}
	if rating != nil && !finite(*rating) {
		return invalid("rating", "must be a finite number")
	}
	if stock != nil && *stock < 0 {
		return invalid("stockQuantity", "must not be negative")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// likePattern escapes LIKE wildcards so term matches as a literal substring.
// Callers pair it with ESCAPE '\'.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
