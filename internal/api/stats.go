package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/logging"
	"github.com/abhisek/pysis/internal/stats"
)

// StatsStatus is the health message of the statistics service.
const StatsStatus = "Statistics Service está funcionando"

// StatsHandler serves the statistics projections.
type StatsHandler struct {
	svc *stats.Service
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(svc *stats.Service) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// RegisterRoutes registers the statistics routes.
func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) { Status(w, StatsStatus) })
	r.Route("/stats", func(r chi.Router) {
		r.Get("/students", h.Students)
		r.Get("/daily-activity", h.DailyActivity)
		r.Get("/lesson-performance", h.LessonPerformance)
		r.Get("/active-users-last-7-days", h.ActiveUsers)
	})
}

// NewStatsRouter returns the full HTTP handler of the statistics service.
func NewStatsRouter(svc *stats.Service, logger *zap.Logger) http.Handler {
	r := newRouter(logger)
	NewStatsHandler(svc).RegisterRoutes(r)
	return r
}

func (h *StatsHandler) Students(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Students(r.Context())
	respond(w, r, out, err)
}

func (h *StatsHandler) DailyActivity(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.DailyActivity(r.Context())
	if out == nil {
		out = []stats.DailyActivity{}
	}
	respond(w, r, out, err)
}

func (h *StatsHandler) LessonPerformance(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.LessonPerformance(r.Context())
	if out == nil {
		out = []stats.LessonPerformance{}
	}
	respond(w, r, out, err)
}

func (h *StatsHandler) ActiveUsers(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ActiveUsersLastWeek(r.Context())
	respond(w, r, out, err)
}

func respond(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		logging.FromContext(r.Context()).Error("stats query failed", zap.String("path", r.URL.Path), zap.Error(err))
		Detail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	JSON(w, http.StatusOK, v)
}
