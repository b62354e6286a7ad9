package registry

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/agritrace/traceability-backend/pkg/errors"
)

// StorageRequirements is advisory storage metadata echoed into QR payloads;
// nothing in the core enforces it.
type StorageRequirements struct {
	Temperature string `json:"temperature"`
	Humidity    string `json:"humidity"`
	Ventilation string `json:"ventilation"`
	PestControl string `json:"pestControl"`
}

// PackagingOption is one allowed packaging type with its closed set of
// standard weights.
type PackagingOption struct {
	Type            string            `json:"type"`
	Name            string            `json:"name"`
	StandardWeights []decimal.Decimal `json:"standardWeights"`
	Description     string            `json:"description"`
}

// AllowsWeight reports whether weight is one of the standard weights.
func (p PackagingOption) AllowsWeight(weight decimal.Decimal) bool {
	for _, allowed := range p.StandardWeights {
		if allowed.Equal(weight) {
			return true
		}
	}
	return false
}

// ProductVariant describes one sub-product within a commodity category.
type ProductVariant struct {
	SubCategory               string              `json:"subCategory"`
	ProductName               string              `json:"productName"`
	Description               string              `json:"description"`
	PackagingOptions          []PackagingOption   `json:"packagingOptions"`
	QualityGrades             []string            `json:"qualityGrades"`
	CertificationRequirements []string            `json:"certificationRequirements"`
	StorageRequirements       StorageRequirements `json:"storageRequirements"`
	ShelfLifeDays             int                 `json:"shelfLife"`
	HSCode                    string              `json:"hsCode"`
}

// PackagingOption returns the named packaging option, if offered.
func (v ProductVariant) PackagingOption(packagingType string) (PackagingOption, bool) {
	for _, opt := range v.PackagingOptions {
		if opt.Type == packagingType {
			return opt, true
		}
	}
	return PackagingOption{}, false
}

// CategoryData groups the variants of one commodity family.
type CategoryData struct {
	Category string           `json:"category"`
	Products []ProductVariant `json:"products"`
}

// Validation is the soft result of a packaging/weight check. Mismatches are
// expected user input errors at the UI boundary, so they are reportable values
// rather than Go errors.
type Validation struct {
	Valid          bool
	Packaging      *PackagingOption
	Err            string
	AllowedWeights []decimal.Decimal
}

// Registry is the static product configuration lookup. It is loaded once at
// process start and shared read-only across requests.
type Registry struct {
	categories map[string]CategoryData
	order      []string
}

// New returns a registry loaded with the built-in commodity dataset.
func New() *Registry {
	return newFromData(builtinCategories)
}

func newFromData(data []CategoryData) *Registry {
	r := &Registry{categories: make(map[string]CategoryData, len(data))}
	for _, cat := range data {
		r.categories[cat.Category] = cat
		r.order = append(r.order, cat.Category)
	}
	return r
}

// Categories lists the known category keys in dataset order.
func (r *Registry) Categories() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Configuration returns the full category data.
func (r *Registry) Configuration(category string) (CategoryData, error) {
	cat, ok := r.categories[normalizeKey(category)]
	if !ok {
		return CategoryData{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown product category %q", category))
	}
	return cat, nil
}

// Variant returns one sub-product within a category.
func (r *Registry) Variant(category, subCategory string) (ProductVariant, error) {
	cat, err := r.Configuration(category)
	if err != nil {
		return ProductVariant{}, err
	}
	sub := normalizeKey(subCategory)
	for _, variant := range cat.Products {
		if variant.SubCategory == sub {
			return variant, nil
		}
	}
	return ProductVariant{}, pkgerrors.New(pkgerrors.CodeNotFound,
		fmt.Sprintf("unknown sub-product %q in category %q", subCategory, category))
}

// ValidatePackaging checks a (category, subCategory, packagingType, weight)
// tuple against the dataset. Unknown category/sub-category is still a lookup
// failure; a known variant with a wrong packaging type or weight fails softly.
func (r *Registry) ValidatePackaging(category, subCategory, packagingType string, weight decimal.Decimal) Validation {
	variant, err := r.Variant(category, subCategory)
	if err != nil {
		msg := err.Error()
		if typed := pkgerrors.As(err); typed != nil {
			msg = typed.Message()
		}
		return Validation{Valid: false, Err: msg}
	}

	opt, ok := variant.PackagingOption(normalizeKey(packagingType))
	if !ok {
		return Validation{
			Valid: false,
			Err:   fmt.Sprintf("packaging type %q is not offered for %s", packagingType, variant.ProductName),
		}
	}

	if !opt.AllowsWeight(weight) {
		return Validation{
			Valid:          false,
			Err:            fmt.Sprintf("weight %s is not a standard weight for %s (allowed: %s)", weight, opt.Name, formatWeights(opt.StandardWeights)),
			AllowedWeights: opt.StandardWeights,
		}
	}

	return Validation{Valid: true, Packaging: &opt}
}

func normalizeKey(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func formatWeights(weights []decimal.Decimal) string {
	parts := make([]string, 0, len(weights))
	for _, w := range weights {
		parts = append(parts, w.String())
	}
	return strings.Join(parts, ", ")
}
