package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bizcenter/marketplace/internal/service"
	"github.com/bizcenter/marketplace/pkg/httputil"
	"github.com/bizcenter/marketplace/pkg/middleware"
	"github.com/bizcenter/marketplace/pkg/validator"
)

// ShopHandler handles HTTP requests for shop endpoints.
type ShopHandler struct {
	shops    *service.ShopService
	products *service.ProductService
	logger   *slog.Logger
}

// NewShopHandler creates a new shop HTTP handler.
func NewShopHandler(shops *service.ShopService, products *service.ProductService, logger *slog.Logger) *ShopHandler {
	return &ShopHandler{
		shops:    shops,
		products: products,
		logger:   logger,
	}
}

// --- Request DTOs ---

// CreateShopRequest is the JSON request body for creating a shop.
type CreateShopRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Description string `json:"description" validate:"required,min=1,max=2000"`
	ImageURL    string `json:"imageUrl" validate:"required,url"`
}

// UpdateShopRequest is the JSON request body for updating a shop. The owner,
// product list, reviews and rating fields are not accepted here: they are
// maintained by the server.
type UpdateShopRequest struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,min=1,max=2000"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

// --- Handlers ---

// ListShops handles GET /api/v1/shops
func (h *ShopHandler) ListShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.shops.ListShops(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: shops})
}

// GetShop handles GET /api/v1/shops/{id}
func (h *ShopHandler) GetShop(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	shop, err := h.shops.GetShop(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: shop})
}

// GetShopProducts handles GET /api/v1/shops/{id}/products
func (h *ShopHandler) GetShopProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	products, err := h.products.ListShopProducts(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: products})
}

// CreateShop handles POST /api/v1/shops
func (h *ShopHandler) CreateShop(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	shop, err := h.shops.CreateShop(r.Context(), &service.CreateShopInput{
		OwnerID:     middleware.UserIDFromContext(r.Context()),
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: shop})
}

// UpdateShop handles PUT /api/v1/shops/{id}
func (h *ShopHandler) UpdateShop(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateShopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	shop, err := h.shops.UpdateShop(r.Context(), id.String(), middleware.UserIDFromContext(r.Context()), &service.UpdateShopInput{
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: shop})
}

// DeleteShop handles DELETE /api/v1/shops/{id}
func (h *ShopHandler) DeleteShop(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.shops.DeleteShop(r.Context(), id.String(), middleware.UserIDFromContext(r.Context())); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
