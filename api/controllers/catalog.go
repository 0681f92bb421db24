package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/PurushorthamanMR/ArulTex-BA/api/responses"
	"github.com/PurushorthamanMR/ArulTex-BA/api/validators"
	"github.com/PurushorthamanMR/ArulTex-BA/internal/catalog"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/db/models"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
)

// The catalog reference tables share one shape: list, get, create, update,
// deactivate. The handlers below keep them separate so each table keeps its
// own payload and not-found message.

func CategoryList(repo *catalog.CategoryRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category repository unavailable"))
			return
		}
		categories, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, categories)
	}
}

func CategoryCreate(repo *catalog.CategoryRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category repository unavailable"))
			return
		}
		var payload namedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := repo.Create(r.Context(), &models.ProductCategory{Name: payload.Name, IsActive: true})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				err = pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, category)
	}
}

func CategoryUpdate(repo *catalog.CategoryRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload namedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		category, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "category not found"))
			return
		}
		category.Name = payload.Name
		if payload.IsActive != nil {
			category.IsActive = *payload.IsActive
		}
		updated, err := repo.Update(r.Context(), category)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				err = pkgerrors.New(pkgerrors.CodeConflict, "category name already in use")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func CategoryDeactivate(repo *catalog.CategoryRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "category repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "categoryId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "category not found"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

func SupplierList(repo *catalog.SupplierRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier repository unavailable"))
			return
		}
		suppliers, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, suppliers)
	}
}

func SupplierCreate(repo *catalog.SupplierRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier repository unavailable"))
			return
		}
		var payload supplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplier, err := repo.Create(r.Context(), &models.Supplier{
			Name:     payload.Name,
			Phone:    payload.Phone,
			Email:    payload.Email,
			Address:  payload.Address,
			IsActive: true,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, supplier)
	}
}

func SupplierUpdate(repo *catalog.SupplierRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "supplierId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload supplierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplier, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "supplier not found"))
			return
		}
		supplier.Name = payload.Name
		supplier.Phone = payload.Phone
		supplier.Email = payload.Email
		supplier.Address = payload.Address
		if payload.IsActive != nil {
			supplier.IsActive = *payload.IsActive
		}
		updated, err := repo.Update(r.Context(), supplier)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func SupplierDeactivate(repo *catalog.SupplierRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "supplier repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "supplierId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "supplier not found"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

func CustomerList(repo *catalog.CustomerRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer repository unavailable"))
			return
		}
		customers, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customers)
	}
}

func CustomerCreate(repo *catalog.CustomerRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer repository unavailable"))
			return
		}
		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := repo.Create(r.Context(), &models.Customer{
			Name:     payload.Name,
			Phone:    payload.Phone,
			Email:    payload.Email,
			IsActive: true,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, customer)
	}
}

func CustomerUpdate(repo *catalog.CustomerRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "customerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload customerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customer, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "customer not found"))
			return
		}
		customer.Name = payload.Name
		customer.Phone = payload.Phone
		customer.Email = payload.Email
		if payload.IsActive != nil {
			customer.IsActive = *payload.IsActive
		}
		updated, err := repo.Update(r.Context(), customer)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func CustomerDeactivate(repo *catalog.CustomerRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "customer repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "customerId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "customer not found"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

func PaymentMethodList(repo *catalog.PaymentMethodRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method repository unavailable"))
			return
		}
		methods, err := repo.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, methods)
	}
}

func PaymentMethodCreate(repo *catalog.PaymentMethodRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method repository unavailable"))
			return
		}
		var payload namedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := repo.Create(r.Context(), &models.PaymentMethod{Name: payload.Name, IsActive: true})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				err = pkgerrors.New(pkgerrors.CodeConflict, "payment method name already in use")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, method)
	}
}

func PaymentMethodUpdate(repo *catalog.PaymentMethodRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "paymentMethodId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload namedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		method, err := repo.FindByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "payment method not found"))
			return
		}
		method.Name = payload.Name
		if payload.IsActive != nil {
			method.IsActive = *payload.IsActive
		}
		updated, err := repo.Update(r.Context(), method)
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				err = pkgerrors.New(pkgerrors.CodeConflict, "payment method name already in use")
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func PaymentMethodDeactivate(repo *catalog.PaymentMethodRepository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment method repository unavailable"))
			return
		}
		id, err := validators.ParsePathID(chi.URLParam(r, "paymentMethodId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := repo.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, mapNotFound(err, "payment method not found"))
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deactivated": true})
	}
}

type namedRequest struct {
	Name     string `json:"name" validate:"required"`
	IsActive *bool  `json:"isActive,omitempty"`
}

type supplierRequest struct {
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Address  *string `json:"address,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

type customerRequest struct {
	Name     string  `json:"name" validate:"required"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	IsActive *bool   `json:"isActive,omitempty"`
}

func mapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msg)
	}
	return err
}
