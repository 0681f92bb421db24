package controllers

import (
	"net/http"

	"github.com/PurushorthamanMR/ArulTex-BA/api/responses"
	"github.com/PurushorthamanMR/ArulTex-BA/api/validators"
	authsvc "github.com/PurushorthamanMR/ArulTex-BA/internal/auth"
	pkgerrors "github.com/PurushorthamanMR/ArulTex-BA/pkg/errors"
	"github.com/PurushorthamanMR/ArulTex-BA/pkg/logger"
)

// AuthLogin exchanges a credential pair for an access token.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), authsvc.LoginInput{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
