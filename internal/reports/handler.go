package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris-erp/internal/platform/httpx"
)

// Handler exposes the report dispatcher endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers report routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/fees", h.dispatch)
}

// dispatch routes on the type parameter. Each type has its own
// mandatory-parameter contract, checked before any query runs.
func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch q.Get("type") {
	case "daily":
		from, err1 := time.Parse("2006-01-02", q.Get("from"))
		to, err2 := time.Parse("2006-01-02", q.Get("to"))
		if err1 != nil || err2 != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "daily report requires from and to dates (YYYY-MM-DD)")
			return
		}
		if to.Before(from) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "to must not be before from")
			return
		}
		report, err := h.service.Daily(r.Context(), from, to.AddDate(0, 0, 1))
		h.respond(w, report, err, "daily")
	case "monthly":
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil || year < 1900 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "monthly report requires a year")
			return
		}
		report, svcErr := h.service.Monthly(r.Context(), year)
		h.respond(w, report, svcErr, "monthly")
	case "class":
		classID, err := strconv.ParseInt(q.Get("classId"), 10, 64)
		if err != nil || classID == 0 {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "class report requires a classId")
			return
		}
		report, svcErr := h.service.Class(r.Context(), classID)
		h.respond(w, report, svcErr, "class")
	case "pending":
		report, err := h.service.Pending(r.Context())
		h.respond(w, report, err, "pending")
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "type must be daily, monthly, class or pending")
	}
}

func (h *Handler) respond(w http.ResponseWriter, report any, err error, kind string) {
	if err != nil {
		h.logger.Error("fee report", slog.Any("error", err), slog.String("type", kind))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}
