package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pkg/errors"
)

const productsBasePath = "/product-service/api/v1"

// ProductService talks to the product backend: catalog browsing plus the
// seller portal's product management.
type ProductService struct {
	client *Client
}

// Image is a stored product image reference.
type Image struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"imageUrl"`
}

// Product is the catalog entity as the product backend serves it.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	Price         float64 `json:"price"`
	Stock         int     `json:"stock,omitempty"`
	CategoryID    int64   `json:"categoryId"`
	ProductType   string  `json:"productType,omitempty"`
	SellerID      int64   `json:"sellerId,omitempty"`
	SKU           string  `json:"sku,omitempty"`
	CoverImageURL string  `json:"coverImageUrl"`
	ImageURLs     []Image `json:"imageUrls,omitempty"`
}

// Category is a catalog category.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ListOptions filters a product listing.
type ListOptions struct {
	CategoryID int64
}

// List returns the catalog, optionally filtered by category.
func (s *ProductService) List(ctx context.Context, opts ListOptions) ([]Product, error) {
	var query url.Values
	if opts.CategoryID != 0 {
		query = url.Values{"categoryId": []string{strconv.FormatInt(opts.CategoryID, 10)}}
	}
	var out []Product
	if err := s.client.doJSON(ctx, http.MethodGet, productsBasePath+"/products", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns a single product.
func (s *ProductService) Get(ctx context.Context, id int64) (*Product, error) {
	var out Product
	path := fmt.Sprintf("%s/products/%d", productsBasePath, id)
	if err := s.client.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Create registers a new product and returns it with its assigned ID.
// Seller-only; the backend checks the caller's role.
func (s *ProductService) Create(ctx context.Context, product Product) (*Product, error) {
	var out Product
	if err := s.client.doJSON(ctx, http.MethodPost, productsBasePath+"/products", nil, product, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update replaces an existing product.
func (s *ProductService) Update(ctx context.Context, product Product) error {
	path := fmt.Sprintf("%s/products/%d", productsBasePath, product.ID)
	return s.client.doJSON(ctx, http.MethodPut, path, nil, product, nil)
}

// Delete removes a product from the catalog.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/products/%d", productsBasePath, id)
	return s.client.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Categories lists all catalog categories.
func (s *ProductService) Categories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := s.client.doJSON(ctx, http.MethodGet, productsBasePath+"/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Category returns a single category.
func (s *ProductService) Category(ctx context.Context, id int64) (*Category, error) {
	var out Category
	path := fmt.Sprintf("%s/categories/%d", productsBasePath, id)
	if err := s.client.doJSON(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ImageUpload is one image file to attach to a product.
type ImageUpload struct {
	FileName string
	Content  io.Reader
}

// UploadImages attaches images to a product as a multipart form. coverIndex
// selects which uploaded image becomes the cover; pass a negative value to
// leave the cover unchanged.
func (s *ProductService) UploadImages(ctx context.Context, productID int64, images []ImageUpload, coverIndex int) error {
	if len(images) == 0 {
		return errors.New("[UploadImages] at least one image is required")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, image := range images {
		part, err := writer.CreateFormFile("images", image.FileName)
		if err != nil {
			return errors.Wrap(err, "[UploadImages] creating form file")
		}
		if _, err := io.Copy(part, image.Content); err != nil {
			return errors.Wrapf(err, "[UploadImages] reading %s", image.FileName)
		}
	}
	if coverIndex >= 0 {
		if err := writer.WriteField("coverImageIndex", strconv.Itoa(coverIndex)); err != nil {
			return errors.Wrap(err, "[UploadImages] writing cover index")
		}
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "[UploadImages] finalizing form")
	}

	path := fmt.Sprintf("%s/products/%d/images", productsBasePath, productID)
	req, err := s.client.newRequest(ctx, http.MethodPost, path, nil, &buf, writer.FormDataContentType())
	if err != nil {
		return err
	}
	return s.client.send(req, nil)
}

// DeleteImage removes one stored image from a product.
func (s *ProductService) DeleteImage(ctx context.Context, productID, imageID int64) error {
	path := fmt.Sprintf("%s/products/%d/images/%d", productsBasePath, productID, imageID)
	return s.client.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}
