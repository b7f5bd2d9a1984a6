package cart

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/backend-troli/internal/common"
	"github.com/noah-isme/backend-troli/internal/obs"
	"github.com/noah-isme/backend-troli/internal/pricing"
)

// Handler wires the cart sessions to HTTP.
type Handler struct {
	Sessions *Sessions
	Validate *validator.Validate
	Currency string
}

type addItemPayload struct {
	ProductID         string  `json:"productId" validate:"required"`
	Title             string  `json:"title"`
	UnitPrice         int64   `json:"unitPrice" validate:"gte=0"`
	OriginalUnitPrice int64   `json:"originalUnitPrice" validate:"gte=0"`
	Qty               int     `json:"qty" validate:"required,gte=1"`
	MaxQty            int     `json:"maxQty" validate:"gte=0"`
	Stock             int     `json:"stock" validate:"gte=0"`
	Variant           Variant `json:"variant"`
}

type updateQtyPayload struct {
	Qty int `json:"qty" validate:"required,gte=1"`
}

type promoPayload struct {
	Code string `json:"code" validate:"required"`
}

// Create registers a fresh cart session.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Sessions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart sessions not configured", nil)
		return
	}
	id := h.Sessions.Create(r.Context())
	common.Data(w, http.StatusCreated, map[string]any{"cartId": id})
}

// Get returns cart contents, the saved list and the pricing breakdown.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(s *Store) error { return nil })
}

// AddItem adds or merges a cart line item.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var payload addItemPayload
	if !h.decode(w, r, &payload) {
		return
	}
	h.withCart(w, r, func(s *Store) error {
		product := Product{
			ID:                payload.ProductID,
			Title:             payload.Title,
			UnitPrice:         payload.UnitPrice,
			OriginalUnitPrice: payload.OriginalUnitPrice,
			MaxQty:            payload.MaxQty,
			Stock:             payload.Stock,
		}
		_, err := s.AddItem(r.Context(), product, payload.Variant, payload.Qty)
		return err
	})
}

// UpdateItem replaces the quantity of a cart line item.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var payload updateQtyPayload
	if !h.decode(w, r, &payload) {
		return
	}
	entryID := chi.URLParam(r, "entryId")
	h.withCart(w, r, func(s *Store) error {
		_, err := s.UpdateQuantity(r.Context(), entryID, payload.Qty)
		return err
	})
}

// RemoveItem deletes a cart line item. Unknown entries are a no-op.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	h.withCart(w, r, func(s *Store) error {
		s.RemoveItem(r.Context(), entryID)
		return nil
	})
}

// SaveItem moves a cart line to the saved-for-later list.
func (h *Handler) SaveItem(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	h.withCart(w, r, func(s *Store) error {
		s.SaveForLater(r.Context(), entryID)
		return nil
	})
}

// RestoreItem moves a saved item back into the cart. Out-of-stock saved
// items are left untouched, matching the silent reference behavior.
func (h *Handler) RestoreItem(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	h.withCartExtra(w, r, func(s *Store) (map[string]any, error) {
		_, restored := s.MoveToCart(r.Context(), entryID)
		return map[string]any{"restored": restored}, nil
	})
}

// RemoveSavedItem deletes from the saved-for-later list.
func (h *Handler) RemoveSavedItem(w http.ResponseWriter, r *http.Request) {
	entryID := chi.URLParam(r, "entryId")
	h.withCart(w, r, func(s *Store) error {
		s.RemoveSavedItem(r.Context(), entryID)
		return nil
	})
}

// Clear empties the active cart. Saved items survive.
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(s *Store) error {
		s.ClearCart(r.Context())
		return nil
	})
}

// ApplyPromotion applies a promotion code and reports the discount computed
// against the current subtotal.
func (h *Handler) ApplyPromotion(w http.ResponseWriter, r *http.Request) {
	var payload promoPayload
	if !h.decode(w, r, &payload) {
		return
	}
	h.withCartExtra(w, r, func(s *Store) (map[string]any, error) {
		discount, err := s.ApplyPromotion(r.Context(), strings.TrimSpace(payload.Code))
		if obs.PromotionApplyTotal != nil {
			result := "ok"
			if err != nil {
				result = "invalid"
			}
			obs.PromotionApplyTotal.WithLabelValues(result).Inc()
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"discount": discount}, nil
	})
}

// RemovePromotion clears the active promotion.
func (h *Handler) RemovePromotion(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(s *Store) error {
		s.ClearPromotion(r.Context())
		return nil
	})
}

// Count returns the summed quantity over active items.
func (h *Handler) Count(w http.ResponseWriter, r *http.Request) {
	if h.Sessions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart sessions not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	var count int
	err := h.Sessions.With(r.Context(), cartID, func(s *Store) error {
		count = s.ItemCount()
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{"count": count})
}

// withCart runs the mutation and renders the resulting cart view, so every
// mutation response carries the fresh breakdown.
func (h *Handler) withCart(w http.ResponseWriter, r *http.Request, fn func(*Store) error) {
	h.withCartExtra(w, r, func(s *Store) (map[string]any, error) {
		return nil, fn(s)
	})
}

func (h *Handler) withCartExtra(w http.ResponseWriter, r *http.Request, fn func(*Store) (map[string]any, error)) {
	if h.Sessions == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "cart sessions not configured", nil)
		return
	}
	cartID := chi.URLParam(r, "id")
	var view map[string]any
	err := h.Sessions.With(r.Context(), cartID, func(s *Store) error {
		extra, err := fn(s)
		if err != nil {
			return err
		}
		view = h.cartView(s)
		for k, v := range extra {
			view[k] = v
		}
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, view)
}

func (h *Handler) cartView(s *Store) map[string]any {
	breakdown := s.Breakdown()
	var promoCode *string
	if p := s.Promotion(); p.Active() {
		code := p.Code
		promoCode = &code
	}
	return map[string]any{
		"id":             s.ID,
		"items":          s.Items(),
		"savedItems":     s.SavedItems(),
		"promotion":      promoCode,
		"pricing":        breakdown,
		"totalFormatted": pricing.Format(breakdown.Total),
		"currency":       h.Currency,
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, payload any) bool {
	if err := json.NewDecoder(r.Body).Decode(payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(payload); err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", err.Error())
			return false
		}
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if err == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unknown error", nil)
		return
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code := appErr.Code
		if code == "" {
			code = "BAD_REQUEST"
		}
		common.JSONError(w, appErr.Status(http.StatusBadRequest), code, appErr.Message, appErr.Details)
		return
	}
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		common.JSONError(w, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, ErrInvalidPromotionCode):
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_PROMO_CODE", err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCartNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", err.Error(), nil)
	}
}
