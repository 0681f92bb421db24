package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/PurushorthamanMR/ArulTex-BA/api/middleware"
	"github.com/PurushorthamanMR/ArulTex-BA/api/responses"
	"github.com/PurushorthamanMR/ArulTex-BA/api/validators"
	purchasesvc "github.com/PurushorthamanMR/ArulTex-BA/internal/purchases"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/enums"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
)

// PurchaseCreate records a supplier order. A completed order receives stock
// through the ledger in the same transaction.
func PurchaseCreate(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, purchase)
	}
}

// PurchaseUpdate edits a pending order; completing it receives the stock.
func PurchaseUpdate(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if actorID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "purchaseId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(id, actorID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Update(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, purchase)
	}
}

// PurchaseGet fetches one order with its items.
func PurchaseGet(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "purchaseId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, purchase)
	}
}

// PurchaseSearch pages through orders with optional filters.
func PurchaseSearch(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		supplierID, err := validators.ParseQueryID(r, "supplierId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQueryPurchaseStatus(r, "status")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		from, err := validators.ParseQueryTime(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryTime(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Search(r.Context(), purchasesvc.Filter{
			PurchaseNumber: validators.ParseQueryString(r, "purchaseNumber"),
			SupplierID:     supplierID,
			Status:         status,
			From:           from,
			To:             to,
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// PurchaseItemsByProduct lists a product's purchase history, newest first.
func PurchaseItemsByProduct(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "purchases service unavailable"))
			return
		}

		productID, err := validators.ParsePathID(chi.URLParam(r, "productId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListItemsByProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

type purchaseItemRequest struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	CostPrice decimal.Decimal `json:"costPrice"`
}

type createPurchaseRequest struct {
	SupplierID     int64                 `json:"supplierId" validate:"required,gt=0"`
	PurchaseNumber *string               `json:"purchaseNumber,omitempty"`
	DateTime       *time.Time            `json:"dateTime,omitempty"`
	Status         *string               `json:"status,omitempty"`
	Items          []purchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r createPurchaseRequest) toInput(userID int64) (purchasesvc.CreatePurchaseInput, error) {
	status, err := parsePurchaseStatus(r.Status)
	if err != nil {
		return purchasesvc.CreatePurchaseInput{}, err
	}
	return purchasesvc.CreatePurchaseInput{
		SupplierID:     r.SupplierID,
		UserID:         userID,
		PurchaseNumber: r.PurchaseNumber,
		DateTime:       r.DateTime,
		Status:         status,
		Items:          toPurchaseItems(r.Items),
	}, nil
}

type updatePurchaseRequest struct {
	SupplierID *int64                `json:"supplierId,omitempty" validate:"omitempty,gt=0"`
	Status     *string               `json:"status,omitempty"`
	Items      []purchaseItemRequest `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

func (r updatePurchaseRequest) toInput(purchaseID, actorID int64) (purchasesvc.UpdatePurchaseInput, error) {
	status, err := parsePurchaseStatus(r.Status)
	if err != nil {
		return purchasesvc.UpdatePurchaseInput{}, err
	}
	return purchasesvc.UpdatePurchaseInput{
		PurchaseID:  purchaseID,
		ActorUserID: actorID,
		SupplierID:  r.SupplierID,
		Status:      status,
		Items:       toPurchaseItems(r.Items),
	}, nil
}

func parsePurchaseStatus(raw *string) (*enums.PurchaseStatus, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	status, err := enums.ParsePurchaseStatus(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase status")
	}
	return &status, nil
}

func toPurchaseItems(items []purchaseItemRequest) []purchasesvc.PurchaseItemInput {
	result := make([]purchasesvc.PurchaseItemInput, 0, len(items))
	for _, item := range items {
		result = append(result, purchasesvc.PurchaseItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			CostPrice: item.CostPrice,
		})
	}
	return result
}
