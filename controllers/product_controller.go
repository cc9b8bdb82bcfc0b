package controllers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/swarajb-778/StockPilot/services"
)

type ProductController struct {
	svc           *services.ProductService
	maxImageBytes int64
}

func NewProductController(svc *services.ProductService, maxImageBytes int64) *ProductController {
	return &ProductController{svc: svc, maxImageBytes: maxImageBytes}
}

// productForm holds the raw product fields of a multipart or JSON request.
type productForm struct {
	Name          *string              `json:"name"`
	Price         *float64             `json:"price"`
	StockQuantity *int                 `json:"stockQuantity"`
	Rating        *float64             `json:"rating"`
	Description   *string              `json:"description"`
	Image         *services.ImageInput `json:"-"`
}

// GET /products?search=
func (h *ProductController) List(c *gin.Context) {
	products, err := h.svc.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// GET /products/:id
func (h *ProductController) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /products
func (h *ProductController) Create(c *gin.Context) {
	form, err := h.parseForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	in := services.CreateProductInput{
		Rating:      form.Rating,
		Description: form.Description,
		Image:       form.Image,
	}
	if form.Name != nil {
		in.Name = *form.Name
	}
	if form.Price == nil {
		respondError(c, &services.ValidationError{Field: "price", Message: "is required"})
		return
	}
	in.Price = *form.Price
	if form.StockQuantity == nil {
		respondError(c, &services.ValidationError{Field: "stockQuantity", Message: "is required"})
		return
	}
	in.StockQuantity = *form.StockQuantity

	p, err := h.svc.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// PUT|PATCH /products/:id
func (h *ProductController) Update(c *gin.Context) {
	form, err := h.parseForm(c)
	if err != nil {
		respondError(c, err)
		return
	}

	p, err := h.svc.Update(c.Request.Context(), c.Param("id"), services.UpdateProductInput{
		Name:          form.Name,
		Price:         form.Price,
		StockQuantity: form.StockQuantity,
		Rating:        form.Rating,
		Description:   form.Description,
		Image:         form.Image,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /products/:id/image
func (h *ProductController) UploadImage(c *gin.Context) {
	img, err := h.readImage(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if img == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image file provided"})
		return
	}

	p, err := h.svc.AttachImage(c.Request.Context(), c.Param("id"), *img)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DELETE /products/:id
func (h *ProductController) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

func (h *ProductController) parseForm(c *gin.Context) (*productForm, error) {
	form := &productForm{}
	if strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(form); err != nil {
			return nil, &services.ValidationError{Field: "body", Message: "invalid JSON"}
		}
		return form, nil
	}

	if v, ok := c.GetPostForm("name"); ok {
		form.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		form.Description = &v
	}

	var err error
	if form.Price, err = formFloat(c, "price"); err != nil {
		return nil, err
	}
	if form.Rating, err = formFloat(c, "rating"); err != nil {
		return nil, err
	}
	if v, ok := c.GetPostForm("stockQuantity"); ok && strings.TrimSpace(v) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return nil, &services.ValidationError{Field: "stockQuantity", Message: "must be an integer"}
		}
		form.StockQuantity = &n
	}

	if form.Image, err = h.readImage(c); err != nil {
		return nil, err
	}
	return form, nil
}

// readImage returns nil when the request carries no image part.
func (h *ProductController) readImage(c *gin.Context) (*services.ImageInput, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, &services.ValidationError{Field: "image", Message: "could not read upload"}
	}
	if h.maxImageBytes > 0 && fh.Size > h.maxImageBytes {
		return nil, &services.ValidationError{Field: "image", Message: fmt.Sprintf("exceeds %d bytes", h.maxImageBytes)}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded image: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if h.maxImageBytes > 0 {
		r = io.LimitReader(f, h.maxImageBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read uploaded image: %w", err)
	}
	return &services.ImageInput{Filename: fh.Filename, Data: data}, nil
}

func formFloat(c *gin.Context, field string) (*float64, error) {
	v, ok := c.GetPostForm(field)
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return nil, &services.ValidationError{Field: field, Message: "must be a number"}
	}
	return &f, nil
}
