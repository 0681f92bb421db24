package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/PurushorthamanMR/ArulTex-BA/api/middleware"
	"github.com/PurushorthamanMR/ArulTex-BA/api/responses"
	"github.com/PurushorthamanMR/ArulTex-BA/api/validators"
	inventorysvc "github.com/PurushorthamanMR/ArulTex-BA/internal/inventory"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
)

// InventoryAdjust applies a signed manual correction through the ledger. The
// acting user comes from the access token, not the payload.
func InventoryAdjust(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		actorID := middleware.UserIDFromContext(r.Context())
		if actorID <= 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing"))
			return
		}

		var payload adjustmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.Adjust(r.Context(), inventorysvc.AdjustInput{
			ProductID:   payload.ProductID,
			Quantity:    payload.Quantity,
			ActorUserID: actorID,
			Note:        payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, movement)
	}
}

// MovementGet fetches one ledger entry by id.
func MovementGet(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "movementId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.GetMovement(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movement)
	}
}

// MovementSearch pages through the ledger with optional filters.
func MovementSearch(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParseQueryID(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actorID, err := validators.ParseQueryID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		kind, err := validators.ParseQueryMovementKind(r, "kind")
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

		page, err := svc.SearchMovements(r.Context(), inventorysvc.MovementFilter{
			ProductID:   productID,
			Kind:        kind,
			ActorUserID: actorID,
			From:        from,
			To:          to,
		}, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// MovementUpdateNote replaces the free-text note on a ledger entry. The
// movement itself is immutable.
func MovementUpdateNote(svc inventorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "movementId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload movementNoteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UpdateMovementNote(r.Context(), id, payload.Note); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		movement, err := svc.GetMovement(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, movement)
	}
}

type adjustmentRequest struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	Quantity  int     `json:"quantity" validate:"required"`
	Note      *string `json:"note,omitempty"`
}

type movementNoteRequest struct {
	Note *string `json:"note"`
}
