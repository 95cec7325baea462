package gateway

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kasyus/kasyus-go/users"
)

const usersBasePath = "/user-service/api/v1/users"

// UserService talks to the user backend: identity verification, profile,
// addresses, payment methods, and the wishlist.
type UserService struct {
	client *Client
}

// Profile is the mutable part of the account profile.
type Profile struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Me asks the identity backend who the given token belongs to. This is the
// session verifier: the token is passed explicitly so an unverified token
// never has to enter the shared credential source first.
func (s *UserService) Me(ctx context.Context, token string) (*users.User, error) {
	req, err := s.client.newRequest(ctx, http.MethodGet, usersBasePath+"/me", nil, nil, contentTypeJSON)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var user users.User
	if err := s.client.send(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile replaces the account profile.
func (s *UserService) UpdateProfile(ctx context.Context, profile Profile) error {
	return s.client.doJSON(ctx, http.MethodPut, usersBasePath+"/me/profile", nil, profile, nil)
}

// AddressType distinguishes shipping from billing addresses.
type AddressType string

const (
	AddressShipping AddressType = "SHIPPING"
	AddressBilling  AddressType = "BILLING"
)

// Address is a saved delivery or billing address.
type Address struct {
	ID            int64       `json:"id,omitempty"`
	Name          string      `json:"name"`
	Type          AddressType `json:"type"`
	IsDefault     bool        `json:"isDefault"`
	StreetAddress string      `json:"streetAddress"`
	City          string      `json:"city"`
	State         string      `json:"state"`
	PostalCode    string      `json:"postalCode"`
	Country       string      `json:"country"`
	Phone         string      `json:"phone"`
}

// Addresses lists the saved addresses.
func (s *UserService) Addresses(ctx context.Context) ([]Address, error) {
	var out []Address
	if err := s.client.doJSON(ctx, http.MethodGet, usersBasePath+"/me/addresses", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateAddress saves a new address.
func (s *UserService) CreateAddress(ctx context.Context, address Address) error {
	return s.client.doJSON(ctx, http.MethodPost, usersBasePath+"/me/addresses", nil, address, nil)
}

// UpdateAddress replaces a saved address.
func (s *UserService) UpdateAddress(ctx context.Context, address Address) error {
	path := fmt.Sprintf("%s/me/addresses/%d", usersBasePath, address.ID)
	return s.client.doJSON(ctx, http.MethodPut, path, nil, address, nil)
}

// DeleteAddress removes a saved address.
func (s *UserService) DeleteAddress(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/me/addresses/%d", usersBasePath, id)
	return s.client.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// PaymentType enumerates the payment method kinds the backend accepts.
type PaymentType string

const (
	PaymentCreditCard    PaymentType = "CREDIT_CARD"
	PaymentDebitCard     PaymentType = "DEBIT_CARD"
	PaymentBankAccount   PaymentType = "BANK_ACCOUNT"
	PaymentDigitalWallet PaymentType = "DIGITAL_WALLET"
)

// PaymentMethod is a tokenized payment instrument. Token is the processor's
// reference, never a raw card number.
type PaymentMethod struct {
	ID         int64       `json:"id,omitempty"`
	Name       string      `json:"name"`
	Type       PaymentType `json:"type"`
	IsDefault  bool        `json:"isDefault"`
	Provider   string      `json:"provider"`
	Token      string      `json:"token"`
	LastFour   string      `json:"lastFour"`
	ExpiryDate string      `json:"expiryDate"`
}

// PaymentMethods lists the saved payment methods.
func (s *UserService) PaymentMethods(ctx context.Context) ([]PaymentMethod, error) {
	var out []PaymentMethod
	if err := s.client.doJSON(ctx, http.MethodGet, usersBasePath+"/me/payment-methods", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreatePaymentMethod saves a new payment method.
func (s *UserService) CreatePaymentMethod(ctx context.Context, method PaymentMethod) error {
	return s.client.doJSON(ctx, http.MethodPost, usersBasePath+"/me/payment-methods", nil, method, nil)
}

// UpdatePaymentMethod replaces a saved payment method.
func (s *UserService) UpdatePaymentMethod(ctx context.Context, method PaymentMethod) error {
	path := fmt.Sprintf("%s/me/payment-methods/%d", usersBasePath, method.ID)
	return s.client.doJSON(ctx, http.MethodPut, path, nil, method, nil)
}

// DeletePaymentMethod removes a saved payment method.
func (s *UserService) DeletePaymentMethod(ctx context.Context, id int64) error {
	path := fmt.Sprintf("%s/me/payment-methods/%d", usersBasePath, id)
	return s.client.doJSON(ctx, http.MethodDelete, path, nil, nil, nil)
}

// WishlistItem is a product saved to the wishlist.
type WishlistItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

// WishlistItemCreateRequest is the payload for adding a wishlist entry.
type WishlistItemCreateRequest struct {
	ProductID   string `json:"productId"`
	ProductName string `json:"productName"`
}

// Wishlist lists the saved wishlist items.
func (s *UserService) Wishlist(ctx context.Context) ([]WishlistItem, error) {
	var out []WishlistItem
	if err := s.client.doJSON(ctx, http.MethodGet, usersBasePath+"/me/wishlist-items", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddWishlistItem saves a product to the wishlist.
func (s *UserService) AddWishlistItem(ctx context.Context, req WishlistItemCreateRequest) (*WishlistItem, error) {
	var out WishlistItem
	if err := s.client.doJSON(ctx, http.MethodPost, usersBasePath+"/me/wishlist-items", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveWishlistItem deletes a wishlist entry.
func (s *UserService) RemoveWishlistItem(ctx context.Context, itemID string) error {
	return s.client.doJSON(ctx, http.MethodDelete, usersBasePath+"/me/wishlist-items/"+itemID, nil, nil, nil)
}
