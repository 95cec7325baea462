package gateway

import (
	"context"
	"net/http"

	"github.com/pkg/errors"

	"github.com/kasyus/kasyus-go/users"
)

const authBasePath = "/auth-service/api/v1/auth"

// AuthService talks to the auth backend: credential exchange and signup.
type AuthService struct {
	client *Client
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// RegisterRequest is the signup payload. Role defaults to ROLE_USER when
// left empty.
type RegisterRequest struct {
	Email     string         `json:"email"`
	Password  string         `json:"password"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Role      users.RoleType `json:"role"`
}

// Login exchanges credentials for a bearer token. A rejected login comes
// back as an *APIError carrying the backend's message.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	var resp loginResponse
	err := s.client.doJSON(ctx, http.MethodPost, authBasePath+"/login", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", errors.New("[Login] backend returned no access token")
	}
	return resp.AccessToken, nil
}

// Register creates a new account. The caller still has to log in afterwards;
// registration issues no token.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) error {
	if req.Role == "" {
		req.Role = users.RoleUser
	}
	return s.client.doJSON(ctx, http.MethodPost, authBasePath+"/register", nil, req, nil)
}
