package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sngm3741/coffee-map/internal/coffee/application"
	"github.com/sngm3741/coffee-map/internal/coffee/domain"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/common"
	"github.com/sngm3741/coffee-map/internal/interfaces/http/web/render"
)

// User-visible error messages.
const (
	msgSearchFailed    = "Failed to load coffee shops data"
	msgDetailFailed    = "Failed to load shop details"
	msgDetailNotFound  = "Shop details not found"
	msgNotListed       = "Shop is not part of the current results"
	msgInvalidRadius   = "Radius must be a positive number"
	msgSessionRequired = "Session is missing"
	msgInternal        = "Something went wrong, please try again"
)

func (h *Handler) stateHandler() http.HandlerFunc {
	return h.viewHandler(msgSearchFailed, func(ctx context.Context, sessionID string, _ *http.Request) (application.View, error) {
		return h.finder.Load(ctx, sessionID)
	})
}

func (h *Handler) searchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		radius, err := common.ParseOptionalPositiveFloat(query.Get("radius"))
		if err != nil {
			common.WriteError(h.logger, w, http.StatusBadRequest, msgInvalidRadius)
			return
		}
		search := application.SearchQuery{
			ZipCode: strings.TrimSpace(query.Get("zip_code")),
			Radius:  radius,
		}

		h.viewHandler(msgSearchFailed, func(ctx context.Context, sessionID string, _ *http.Request) (application.View, error) {
			return h.finder.Search(ctx, sessionID, search)
		})(w, r)
	}
}

func (h *Handler) filterHandler() http.HandlerFunc {
	return h.viewHandler(msgSearchFailed, func(ctx context.Context, sessionID string, r *http.Request) (application.View, error) {
		return h.finder.Filter(ctx, sessionID, common.ParseBool(r.FormValue("top_rated"), false))
	})
}

func (h *Handler) overflowHandler() http.HandlerFunc {
	return h.viewHandler(msgSearchFailed, func(ctx context.Context, sessionID string, r *http.Request) (application.View, error) {
		return h.finder.ToggleOverflow(ctx, sessionID, common.ParseBool(r.FormValue("expanded"), false))
	})
}

func (h *Handler) selectHandler() http.HandlerFunc {
	return h.viewHandler(msgSearchFailed, func(ctx context.Context, sessionID string, r *http.Request) (application.View, error) {
		return h.finder.Select(ctx, sessionID, domain.ShopID(strings.TrimSpace(chi.URLParam(r, "id"))))
	})
}

func (h *Handler) detailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()

		id := domain.ShopID(strings.TrimSpace(chi.URLParam(r, "id")))
		shop, err := h.finder.Detail(ctx, id)
		if err != nil {
			h.writeError(w, err, msgDetailFailed)
			return
		}

		title, body, err := render.RenderDetail(shop)
		if err != nil {
			h.logger.WithError(err).Error("detail render failed", map[string]interface{}{"shopId": id.String()})
			common.WriteError(h.logger, w, http.StatusInternalServerError, msgInternal)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, detailResponse{Title: title, Body: body})
	}
}

type viewFunc func(ctx context.Context, sessionID string, r *http.Request) (application.View, error)

// viewHandler resolves the session, runs fn and answers with the rendered view.
func (h *Handler) viewHandler(networkMessage string, fn viewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := common.SessionFromContext(r.Context())
		if !ok {
			common.WriteError(h.logger, w, http.StatusUnauthorized, msgSessionRequired)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
		defer cancel()

		view, err := fn(ctx, sessionID, r)
		if err != nil {
			h.writeError(w, err, networkMessage)
			return
		}

		resp, err := buildViewResponse(view)
		if err != nil {
			h.logger.WithError(err).Error("view render failed", map[string]interface{}{"session": sessionID})
			common.WriteError(h.logger, w, http.StatusInternalServerError, msgInternal)
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, resp)
	}
}

// writeError maps finder errors onto status codes and user-visible messages.
func (h *Handler) writeError(w http.ResponseWriter, err error, networkMessage string) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuery):
		common.WriteError(h.logger, w, http.StatusBadRequest, msgInvalidRadius)
	case errors.Is(err, domain.ErrNotFound):
		common.WriteError(h.logger, w, http.StatusNotFound, msgDetailNotFound)
	case errors.Is(err, domain.ErrShopNotListed):
		common.WriteError(h.logger, w, http.StatusNotFound, msgNotListed)
	case errors.Is(err, domain.ErrNetwork):
		common.WriteError(h.logger, w, http.StatusBadGateway, networkMessage)
	case errors.Is(err, context.DeadlineExceeded):
		common.WriteError(h.logger, w, http.StatusGatewayTimeout, networkMessage)
	default:
		h.logger.WithError(err).Error("ui request failed", nil)
		common.WriteError(h.logger, w, http.StatusInternalServerError, msgInternal)
	}
}
