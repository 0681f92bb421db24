package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/PurushorthamanMR/ArulTex-BA/api/middleware"
	"github.com/PurushorthamanMR/ArulTex-BA/api/responses"
	"github.com/PurushorthamanMR/ArulTex-BA/api/validators"
	registersvc "github.com/PurushorthamanMR/ArulTex-BA/internal/register"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
)

// TransactionCreate runs the checkout path: header, lines, payments, and one
// ledger deduction per stock-tracked line, all or nothing.
func TransactionCreate(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload createTransactionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), payload.toInput(userID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// TransactionGet fetches one transaction with its lines and payments.
func TransactionGet(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transaction, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transaction)
	}
}

// TransactionSearch pages through the register history.
func TransactionSearch(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
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
		userID, err := validators.ParseQueryID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		customerID, err := validators.ParseQueryID(r, "customerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseQueryID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paymentMethodID, err := validators.ParseQueryID(r, "paymentMethodId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.Search(r.Context(), registersvc.SearchQuery{
			From:            from,
			To:              to,
			UserID:          userID,
			CustomerID:      customerID,
			ProductID:       productID,
			PaymentMethodID: paymentMethodID,
			ActiveOnly:      r.URL.Query().Get("includeVoided") != "true",
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// TransactionUpdateTotals recomputes the header total from current product
// prices and re-derives the balance from the recorded payments.
func TransactionUpdateTotals(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transaction, err := svc.UpdateTotals(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transaction)
	}
}

// TransactionVoid deactivates a transaction and records who voided it and why.
func TransactionVoid(svc registersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "register service unavailable"))
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if actorID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "transactionId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload voidRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		transaction, err := svc.Void(r.Context(), registersvc.VoidInput{
			TransactionID: id,
			Reason:        payload.Reason,
			ActorUserID:   actorID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, transaction)
	}
}

type transactionLineRequest struct {
	ProductID int64           `json:"productId" validate:"required,gt=0"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
}

type transactionPaymentRequest struct {
	PaymentMethodID int64           `json:"paymentMethodId" validate:"required,gt=0"`
	Amount          decimal.Decimal `json:"amount"`
}

type createTransactionRequest struct {
	CustomerID    int64                       `json:"customerId" validate:"required,gt=0"`
	DateTime      *time.Time                  `json:"dateTime,omitempty"`
	TotalAmount   decimal.Decimal             `json:"totalAmount"`
	BalanceAmount decimal.Decimal             `json:"balanceAmount"`
	Lines         []transactionLineRequest    `json:"lines" validate:"required,min=1,dive"`
	Payments      []transactionPaymentRequest `json:"payments" validate:"required,min=1,dive"`
}

func (r createTransactionRequest) toInput(userID int64) registersvc.CreateTransactionInput {
	input := registersvc.CreateTransactionInput{
		CustomerID:    r.CustomerID,
		UserID:        userID,
		DateTime:      r.DateTime,
		TotalAmount:   r.TotalAmount,
		BalanceAmount: r.BalanceAmount,
	}
	for _, line := range r.Lines {
		input.Lines = append(input.Lines, registersvc.LineInput{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			Discount:  line.Discount,
		})
	}
	for _, payment := range r.Payments {
		input.Payments = append(input.Payments, registersvc.PaymentInput{
			PaymentMethodID: payment.PaymentMethodID,
			Amount:          payment.Amount,
		})
	}
	return input
}

type voidRequest struct {
	Reason string `json:"reason" validate:"required"`
}
