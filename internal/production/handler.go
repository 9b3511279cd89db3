package production

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

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
	r.Route("/production", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.capture)
		r.Get("/rollup", h.rollup)
		r.Delete("/{id}", h.remove)
	})
}

func (h *Handler) capture(w http.ResponseWriter, r *http.Request) {
	var input CaptureInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payload")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	record, err := h.service.Capture(r.Context(), input)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}

	records, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respond(w, err)
		return
	}
	if records == nil {
		records = []Record{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": records})
}

func (h *Handler) rollup(w http.ResponseWriter, r *http.Request) {
	filter, err := parsePeriod(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Period", err.Error())
		return
	}

	rollup, err := h.service.Rollup(r.Context(), filter)
	if err != nil {
		h.respond(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rollup)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid record id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respond(w, err)
		return
	}
	httpx.NoContent(w)
}

func parsePeriod(r *http.Request) (PeriodFilter, error) {
	q := r.URL.Query()

	branchID, err := strconv.ParseInt(q.Get("branch"), 10, 64)
	if err != nil || branchID <= 0 {
		return PeriodFilter{}, errors.New("branch must be a positive integer")
	}
	from, err := time.Parse("2006-01-02", q.Get("from"))
	if err != nil {
		return PeriodFilter{}, errors.New("from must be a YYYY-MM-DD date")
	}
	to, err := time.Parse("2006-01-02", q.Get("to"))
	if err != nil {
		return PeriodFilter{}, errors.New("to must be a YYYY-MM-DD date")
	}
	if to.Before(from) {
		return PeriodFilter{}, errors.New("to must not precede from")
	}
	return PeriodFilter{BranchID: branchID, From: from, To: to}, nil
}

func (h *Handler) respond(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidCapture):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("production request failed", "error", err)
		httpx.RespondError(w, err)
	}
}
