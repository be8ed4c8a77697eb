package stats

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/utils"
)

type StatsHandler struct {
	db *gorm.DB
}

func NewStatsHandler(db *gorm.DB) *StatsHandler {
	return &StatsHandler{db: db}
}

type DashboardStats struct {
	TotalClients      int64   `json:"total_clients"`
	TotalStaff        int64   `json:"total_staff"`
	PendingThisWeek   int64   `json:"pending_this_week"`
	CompletedThisWeek int64   `json:"completed_this_week"`
	RevenueThisMonth  float64 `json:"revenue_this_month"`
}

func (h *StatsHandler) RegisterRoutes(router *mux.Router) {
	statsRouter := router.PathPrefix("/dashboard").Subrouter()
	statsRouter.HandleFunc("/stats", h.GetDashboardStats).Methods("GET")
}

func (h *StatsHandler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var stats DashboardStats

	h.db.Model(&models.Client{}).Where("business_id = ?", scope.BusinessID).
		Count(&stats.TotalClients)
	h.db.Model(&models.Staff{}).Where("business_id = ? AND active = ?", scope.BusinessID, true).
		Count(&stats.TotalStaff)

	now := time.Now()
	weekStart := now.AddDate(0, 0, -int((now.Weekday()+6)%7))
	weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, now.Location())

	h.db.Model(&models.Appointment{}).
		Where("business_id = ? AND status = ? AND start_at >= ? AND start_at < ?",
			scope.BusinessID, models.StatusPending, weekStart, weekStart.AddDate(0, 0, 7)).
		Count(&stats.PendingThisWeek)
	h.db.Model(&models.Appointment{}).
		Where("business_id = ? AND status = ? AND start_at >= ? AND start_at < ?",
			scope.BusinessID, models.StatusDone, weekStart, weekStart.AddDate(0, 0, 7)).
		Count(&stats.CompletedThisWeek)

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	row := h.db.Model(&models.Appointment{}).
		Where("business_id = ? AND payment_status = ? AND start_at >= ?",
			scope.BusinessID, models.PaymentPaid, monthStart).
		Select("COALESCE(SUM(final_price), 0)").Row()
	if err := row.Scan(&stats.RevenueThisMonth); err != nil {
		http.Error(w, "Error computing revenue", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
