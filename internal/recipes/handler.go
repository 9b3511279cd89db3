package recipes

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/comal-erp/comal-erp/internal/costing"
	"github.com/comal-erp/comal-erp/internal/platform/httpx"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/recipes/{parentID}/components", h.Kit)
	r.Post("/recipes/{parentID}/components", h.Upsert)
	r.Delete("/recipes/{parentID}/components/{childID}", h.Delete)
}

func (h *Handler) Kit(w http.ResponseWriter, r *http.Request) {
	parentID, err := strconv.ParseInt(chi.URLParam(r, "parentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid parent id")
		return
	}
	lines, err := h.service.Kit(r.Context(), parentID)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"components": lines})
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	parentID, err := strconv.ParseInt(chi.URLParam(r, "parentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid parent id")
		return
	}
	var payload struct {
		Items []KitItemInput `json:"items" validate:"required,min=1,dive"`
	}
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.Upsert(r.Context(), parentID, payload.Items); err != nil {
		h.respond(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	parentID, err := strconv.ParseInt(chi.URLParam(r, "parentID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid parent id")
		return
	}
	childID, err := strconv.ParseInt(chi.URLParam(r, "childID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid child id")
		return
	}
	if err := h.service.Delete(r.Context(), parentID, childID); err != nil {
		h.respond(w, err)
		return
	}
	httpx.NoContent(w)
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	var cyclic *costing.CyclicRecipeError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.As(err, &cyclic):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Cyclic Recipe", cyclic.Error())
	case errors.Is(err, ErrUnknownChild), errors.Is(err, ErrBadQuantity), errors.Is(err, ErrSelfReference):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Invalid Kit", err.Error())
	default:
		h.logger.Error("recipes request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
