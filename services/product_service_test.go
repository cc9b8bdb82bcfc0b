package services

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarajb-778/StockPilot/models"
	"github.com/swarajb-778/StockPilot/testutil"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type fakeStore struct {
	mu        sync.Mutex
	puts      map[string]string
	deleted   []string
	putErr    error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{puts: map[string]string{}}
}

func (s *fakeStore) Put(_ context.Context, key string, _ []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return "", s.putErr
	}
	url := "https://store.test/" + key
	s.puts[url] = contentType
	return url, nil
}

func (s *fakeStore) Delete(_ context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, url)
	return s.deleteErr
}

func (s *fakeStore) deletedURLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

func newProductService(t *testing.T) (*ProductService, *fakeStore) {
	t.Helper()
	store := newFakeStore()
	return NewProductService(testutil.NewTestDB(t), store, 1024), store
}

func ptr[T any](v T) *T { return &v }

func TestProductService_CreateAndGet(t *testing.T) {
	svc, store := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductInput{
		Name:          "Desk Lamp",
		Price:         24.5,
		StockQuantity: 12,
		Rating:        ptr(4.2),
		Description:   ptr("LED lamp"),
		Image:         &ImageInput{Filename: "lamp.png", Data: pngBytes},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ProductID)
	require.NotNil(t, p.ImageURL)
	assert.True(t, strings.HasPrefix(*p.ImageURL, "https://store.test/products/desk-lamp-"))
	assert.True(t, strings.HasSuffix(*p.ImageURL, ".png"))
	assert.Equal(t, "image/png", store.puts[*p.ImageURL])

	got, err := svc.Get(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, "Desk Lamp", got.Name)
	assert.Equal(t, 12, got.StockQuantity)
	assert.Empty(t, got.Sales)
}

func TestProductService_GetIncludesRecentActivity(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductInput{Name: "Chair", Price: 40, StockQuantity: 3})
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		sale := models.Sale{ProductID: p.ProductID, Timestamp: base.AddDate(0, 0, i), Quantity: 1, UnitPrice: 40, TotalAmount: 40}
		require.NoError(t, svc.db.Create(&sale).Error)
	}
	purchase := models.Purchase{ProductID: p.ProductID, Timestamp: base, Quantity: 5, UnitCost: 20, TotalCost: 100}
	require.NoError(t, svc.db.Create(&purchase).Error)

	got, err := svc.Get(ctx, p.ProductID)
	require.NoError(t, err)
	require.Len(t, got.Sales, recentActivityLimit)
	assert.True(t, got.Sales[0].Timestamp.After(got.Sales[1].Timestamp))
	assert.Len(t, got.Purchases, 1)

	_, err = svc.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_CreateValidation(t *testing.T) {
	svc, store := newProductService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		in    CreateProductInput
		field string
	}{
		{"negative price", CreateProductInput{Name: "x", Price: -1, StockQuantity: 1}, "price"},
		{"negative stock", CreateProductInput{Name: "x", Price: 1, StockQuantity: -1}, "stockQuantity"},
		{"missing name", CreateProductInput{Name: " ", Price: 1}, "name"},
		{"NaN price", CreateProductInput{Name: "x", Price: math.NaN(), StockQuantity: 1}, "price"},
		{"infinite price", CreateProductInput{Name: "x", Price: math.Inf(1), StockQuantity: 1}, "price"},
		{"infinite rating", CreateProductInput{Name: "x", Price: 1, Rating: ptr(math.Inf(-1))}, "rating"},
		{"text image", CreateProductInput{Name: "x", Image: &ImageInput{Data: []byte("hello world")}}, "image"},
		{"empty image", CreateProductInput{Name: "x", Image: &ImageInput{}}, "image"},
		{"oversized image", CreateProductInput{Name: "x", Image: &ImageInput{Data: append(append([]byte{}, pngBytes...), make([]byte, 2048)...)}}, "image"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	list, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, store.puts)
}

func TestProductService_CreateWithoutStore(t *testing.T) {
	svc := NewProductService(testutil.NewTestDB(t), nil, 1024)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Name:  "Mug",
		Price: 5,
		Image: &ImageInput{Data: pngBytes},
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "image", verr.Field)
}

func TestProductService_CreateUploadFailure(t *testing.T) {
	svc, store := newProductService(t)
	store.putErr = errors.New("bucket unavailable")

	_, err := svc.Create(context.Background(), CreateProductInput{
		Name:  "Mug",
		Price: 5,
		Image: &ImageInput{Data: pngBytes},
	})
	require.Error(t, err)
	var verr *ValidationError
	assert.False(t, errors.As(err, &verr))

	list, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProductService_List(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	for _, name := range []string{"Blue Pen", "Notebook", "blueprint paper"} {
		_, err := svc.Create(ctx, CreateProductInput{Name: name, Price: 1, StockQuantity: 1})
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	matches, err := svc.List(ctx, "BLUE")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Blue Pen", matches[0].Name)
	assert.Equal(t, "blueprint paper", matches[1].Name)

	none, err := svc.List(ctx, "stapler")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestProductService_UpdateMergesFields(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductInput{Name: "Stapler", Price: 8, StockQuantity: 20, Description: ptr("red")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, p.ProductID, UpdateProductInput{StockQuantity: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, "Stapler", updated.Name)
	assert.Equal(t, 8.0, updated.Price)
	assert.Equal(t, 4, updated.StockQuantity)
	require.NotNil(t, updated.Description)
	assert.Equal(t, "red", *updated.Description)

	_, err = svc.Update(ctx, p.ProductID, UpdateProductInput{Price: ptr(-3.0)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	_, err = svc.Update(ctx, "missing", UpdateProductInput{Name: ptr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_UpdateReplacesImage(t *testing.T) {
	svc, store := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductInput{Name: "Lamp", Price: 10, Image: &ImageInput{Data: pngBytes}})
	require.NoError(t, err)
	oldURL := *p.ImageURL

	updated, err := svc.AttachImage(ctx, p.ProductID, ImageInput{Data: pngBytes})
	require.NoError(t, err)
	svc.Wait()

	require.NotNil(t, updated.ImageURL)
	assert.NotEqual(t, oldURL, *updated.ImageURL)
	assert.Equal(t, []string{oldURL}, store.deletedURLs())
}

func TestProductService_ImageDeleteFailureIsBestEffort(t *testing.T) {
	svc, store := newProductService(t)
	ctx := context.Background()
	store.deleteErr = errors.New("store offline")

	p, err := svc.Create(ctx, CreateProductInput{Name: "Lamp", Price: 10, Image: &ImageInput{Data: pngBytes}})
	require.NoError(t, err)

	_, err = svc.AttachImage(ctx, p.ProductID, ImageInput{Data: pngBytes})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, p.ProductID))
	svc.Wait()
	assert.Len(t, store.deletedURLs(), 2)

	_, err = svc.Get(ctx, p.ProductID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_DeleteRemovesActivity(t *testing.T) {
	svc, store := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductInput{Name: "Desk", Price: 100, StockQuantity: 2})
	require.NoError(t, err)
	sale := models.Sale{ProductID: p.ProductID, Timestamp: time.Now().UTC(), Quantity: 1, UnitPrice: 100, TotalAmount: 100}
	require.NoError(t, svc.db.Create(&sale).Error)

	require.NoError(t, svc.Delete(ctx, p.ProductID))
	svc.Wait()
	assert.Empty(t, store.deletedURLs())

	var sales int64
	require.NoError(t, svc.db.Model(&models.Sale{}).Where("product_id = ?", p.ProductID).Count(&sales).Error)
	assert.Zero(t, sales)

	err = svc.Delete(ctx, p.ProductID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestImageKey(t *testing.T) {
	key := imageKey("Oak Chair XL", ".webp")
	assert.True(t, strings.HasPrefix(key, "products/oak-chair-xl-"), key)
	assert.True(t, strings.HasSuffix(key, ".webp"))

	assert.True(t, strings.HasPrefix(imageKey("!!!", ".png"), "products/product-"))
	assert.NotEqual(t, imageKey("a", ".png"), imageKey("a", ".png"))
}

func TestProductService_ListEscapesWildcards(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	for _, name := range []string{"A_B", "AXB", "50% off", "500 units"} {
		_, err := svc.Create(ctx, CreateProductInput{Name: name, Price: 1, StockQuantity: 1})
		require.NoError(t, err)
	}

	tests := map[string][]string{
		"_":   {"A_B"},
		"a_b": {"A_B"},
		"50%": {"50% off"},
		"%":   {"50% off"},
	}
	for term, want := range tests {
		list, err := svc.List(ctx, term)
		require.NoError(t, err)
		var names []string
		for _, p := range list {
			names = append(names, p.Name)
		}
		assert.Equal(t, want, names, term)
	}
}

func TestProductService_UpdateRejectsNonFinite(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateProductInput{Name: "Cable", Price: 2, StockQuantity: 5})
	require.NoError(t, err)

	_, err = svc.Update(ctx, p.ProductID, UpdateProductInput{Price: ptr(math.NaN())})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	got, err := svc.Get(ctx, p.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.Price)
}
