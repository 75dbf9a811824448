package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/webcraft-id/kantinku-backend/api/responses"
	"github.com/webcraft-id/kantinku-backend/internal/kantins"
	pkgerrors "github.com/webcraft-id/kantinku-backend/pkg/errors"
	"github.com/webcraft-id/kantinku-backend/pkg/logger"
)

// KantinList returns every kantin for the landing page.
func KantinList(svc kantins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kantin service unavailable"))
			return
		}

		result, err := svc.ListKantins(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// KantinDetail returns one kantin with its menu.
func KantinDetail(svc kantins.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "kantin service unavailable"))
			return
		}

		id, err := parseUintParam(r, "kantinId")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		result, err := svc.GetKantin(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseUintParam(r *http.Request, name string) (uint, error) {
	raw := chi.URLParam(r, name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, name+" must be a positive integer")
	}
	return uint(value), nil
}
