package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/agritrace/traceability-backend/api/responses"
	"github.com/agritrace/traceability-backend/api/validators"
	"github.com/agritrace/traceability-backend/internal/registry"
	"github.com/agritrace/traceability-backend/pkg/logger"
)

// ListProductCategories returns the known commodity category keys.
func ListProductCategories(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]any{"categories": reg.Categories()})
	}
}

// GetProductCategory returns the full configuration for one category.
func GetProductCategory(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category, err := reg.Configuration(chi.URLParam(r, "category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, category)
	}
}

// GetProductVariant returns one sub-product within a category.
func GetProductVariant(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variant, err := reg.Variant(chi.URLParam(r, "category"), chi.URLParam(r, "subCategory"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, variant)
	}
}

type validatePackagingRequest struct {
	Category      string          `json:"category" validate:"required"`
	SubCategory   string          `json:"subCategory" validate:"required"`
	PackagingType string          `json:"packagingType" validate:"required"`
	Weight        decimal.Decimal `json:"weight" validate:"required"`
}

type validatePackagingResponse struct {
	Valid          bool                      `json:"valid"`
	Packaging      *registry.PackagingOption `json:"packaging,omitempty"`
	Error          string                    `json:"error,omitempty"`
	AllowedWeights []decimal.Decimal         `json:"allowedWeights,omitempty"`
}

// ValidatePackaging runs the soft packaging/weight check. Mismatches come
// back as valid:false with an actionable message, not as HTTP errors.
func ValidatePackaging(reg *registry.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload validatePackagingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result := reg.ValidatePackaging(payload.Category, payload.SubCategory, payload.PackagingType, payload.Weight)
		responses.WriteSuccess(w, validatePackagingResponse{
			Valid:          result.Valid,
			Packaging:      result.Packaging,
			Error:          result.Err,
			AllowedWeights: result.AllowedWeights,
		})
	}
}
