package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/PurushorthamanMR/ArulTex-BA/api/middleware"
	"github.com/PurushorthamanMR/ArulTex-BA/api/responses"
	"github.com/PurushorthamanMR/ArulTex-BA/api/validators"
	salesvc "github.com/PurushorthamanMR/ArulTex-BA/internal/sales"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
)

// SaleCreate records an invoiced sale and deducts stock through the ledger.
func SaleCreate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Create(r.Context(), payload.toInput(userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// SaleReturn restocks returned items and moves the sale status.
func SaleReturn(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if actorID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		saleID, err := validators.ParsePathID(chi.URLParam(r, "saleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload returnRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := salesvc.ReturnInput{SaleID: saleID, ActorUserID: actorID}
		for _, item := range payload.Items {
			input.Items = append(input.Items, salesvc.ReturnItemInput{
				SaleItemID: item.SaleItemID,
				Quantity:   item.Quantity,
			})
		}

		sale, err := svc.Return(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// SaleGet fetches one sale with its items.
func SaleGet(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "saleId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// SaleSearch pages through sales with optional filters.
func SaleSearch(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := validators.ParseQuerySaleStatus(r, "status")
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

		page, err := svc.Search(r.Context(), salesvc.Filter{
			InvoiceNumber: validators.ParseQueryString(r, "invoiceNumber"),
			UserID:        userID,
			Status:        status,
			From:          from,
			To:            to,
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// SaleReportDaily summarizes one calendar day. Defaults to today.
func SaleReportDaily(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		date := time.Now().UTC()
		if parsed, err := validators.ParseQueryTime(r, "date"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if parsed != nil {
			date = *parsed
		}

		report, err := svc.ReportDaily(r.Context(), date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// SaleReportMonthly summarizes one calendar month. Defaults to the current one.
func SaleReportMonthly(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		now := time.Now().UTC()
		year, err := validators.ParseQueryInt(r, "year", now.Year(), 2000, 9999)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		month, err := validators.ParseQueryInt(r, "month", int(now.Month()), 1, 12)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ReportMonthly(r.Context(), year, time.Month(month))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// SaleReportByCategory breaks completed sales down per product category.
func SaleReportByCategory(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ReportByCategory(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

// SaleReportBySupplier breaks completed sales down per supplier.
func SaleReportBySupplier(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		from, to, err := reportRange(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.ReportBySupplier(r.Context(), from, to)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

func reportRange(r *http.Request) (*time.Time, *time.Time, error) {
	from, err := validators.ParseQueryTime(r, "from")
	if err != nil {
		return nil, nil, err
	}
	to, err := validators.ParseQueryTime(r, "to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

type saleItemRequest struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
}

type createSaleRequest struct {
	CustomerID    *int64            `json:"customerId,omitempty" validate:"omitempty,gt=0"`
	InvoiceNumber *string           `json:"invoiceNumber,omitempty"`
	DateTime      *time.Time        `json:"dateTime,omitempty"`
	Items         []saleItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (r createSaleRequest) toInput(userID int64) salesvc.CreateSaleInput {
	input := salesvc.CreateSaleInput{
		UserID:        userID,
		CustomerID:    r.CustomerID,
		InvoiceNumber: r.InvoiceNumber,
		DateTime:      r.DateTime,
	}
	for _, item := range r.Items {
		input.Items = append(input.Items, salesvc.SaleItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Discount:  item.Discount,
		})
	}
	return input
}

type returnItemRequest struct {
	SaleItemID int64 `json:"saleItemId" validate:"required,gt=0"`
	Quantity   int   `json:"quantity" validate:"required,gt=0"`
}

type returnRequest struct {
	Items []returnItemRequest `json:"items" validate:"required,min=1,dive"`
}
