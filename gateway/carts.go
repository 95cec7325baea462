package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

const cartsBasePath = "/cart-service/api/v1/carts"

// CartService talks to the cart backend.
type CartService struct {
	client *Client
}

// CartItem is one line in the cart. Price is a decimal string; the cart
// backend never exposes prices as floats.
type CartItem struct {
	ProductID     int64  `json:"productId"`
	Quantity      int    `json:"quantity"`
	Price         string `json:"price"`
	Name          string `json:"name,omitempty"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
}

// Cart is the current cart contents.
type Cart struct {
	Items      []CartItem `json:"items"`
	TotalPrice string     `json:"totalPrice"`
}

type cartAddRequest struct {
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type cartUpdateRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Get returns the current cart.
func (s *CartService) Get(ctx context.Context) (*Cart, error) {
	var out Cart
	if err := s.client.doJSON(ctx, http.MethodGet, cartsBasePath, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Add puts a product into the cart.
func (s *CartService) Add(ctx context.Context, productID int64, quantity int, price float64) error {
	req := cartAddRequest{ProductID: productID, Quantity: quantity, Price: price}
	return s.client.doJSON(ctx, http.MethodPost, cartsBasePath+"/add", nil, req, nil)
}

// UpdateQuantity sets the quantity of a cart line.
func (s *CartService) UpdateQuantity(ctx context.Context, productID int64, quantity int) error {
	req := cartUpdateRequest{ProductID: productID, Quantity: quantity}
	return s.client.doJSON(ctx, http.MethodPut, cartsBasePath+"/update", nil, req, nil)
}

// Remove deletes one product from the cart.
func (s *CartService) Remove(ctx context.Context, productID int64) error {
	query := url.Values{"productId": []string{strconv.FormatInt(productID, 10)}}
	return s.client.doJSON(ctx, http.MethodDelete, cartsBasePath+"/remove", query, nil, nil)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context) error {
	return s.client.doJSON(ctx, http.MethodDelete, cartsBasePath+"/clear", nil, nil, nil)
}
