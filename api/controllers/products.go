package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/PurushorthamanMR/ArulTex-BA/api/responses"
	"github.com/PurushorthamanMR/ArulTex-BA/api/validators"
	productsvc "github.com/PurushorthamanMR/ArulTex-BA/internal/products"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
)

// ProductCreate adds a product to the catalog.
func ProductCreate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateProductInput{
			Name:              payload.Name,
			Barcode:           payload.Barcode,
			CategoryID:        payload.CategoryID,
			SupplierID:        payload.SupplierID,
			UnitPrice:         payload.UnitPrice,
			CostPrice:         payload.CostPrice,
			LowStockThreshold: payload.LowStockThreshold,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// ProductUpdate replaces the mutable catalog fields.
func ProductUpdate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if payload.IsActive != nil {
			isActive = *payload.IsActive
		}

		product, err := svc.Update(r.Context(), id, productsvc.UpdateProductInput{
			Name:              payload.Name,
			Barcode:           payload.Barcode,
			CategoryID:        payload.CategoryID,
			SupplierID:        payload.SupplierID,
			UnitPrice:         payload.UnitPrice,
			CostPrice:         payload.CostPrice,
			LowStockThreshold: payload.LowStockThreshold,
			IsActive:          isActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductDeactivate soft-deletes a product.
func ProductDeactivate(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

// ProductGet fetches one product by id.
func ProductGet(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductGetByBarcode resolves a scanned barcode to its product.
func ProductGetByBarcode(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		barcode := strings.TrimSpace(chi.URLParam(r, "barcode"))
		if barcode == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "barcode is required"))
			return
		}

		product, err := svc.GetByBarcode(r.Context(), barcode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ProductSearch pages through the catalog with optional filters.
func ProductSearch(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		categoryID, err := validators.ParseQueryID(r, "categoryId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseQueryID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := ""
		if q := validators.ParseQueryString(r, "q"); q != nil {
			query = *q
		}

		page, err := svc.Search(r.Context(), productsvc.Filter{
			CategoryID: categoryID,
			SupplierID: supplierID,
			Query:      query,
			ActiveOnly: r.URL.Query().Get("includeInactive") != "true",
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// ProductLowStock lists active products at or below their threshold.
func ProductLowStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		products, err := svc.ListLowStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, products)
	}
}

type productRequest struct {
	Name              string          `json:"name" validate:"required"`
	Barcode           *string         `json:"barcode,omitempty"`
	CategoryID        int64           `json:"categoryId" validate:"required,gt=0"`
	SupplierID        *int64          `json:"supplierId,omitempty" validate:"omitempty,gt=0"`
	UnitPrice         decimal.Decimal `json:"unitPrice"`
	CostPrice         decimal.Decimal `json:"costPrice"`
	LowStockThreshold int             `json:"lowStockThreshold" validate:"omitempty,min=0"`
	IsActive          *bool           `json:"isActive,omitempty"`
}
