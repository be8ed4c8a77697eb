package staff

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/utils"
)

type StaffHandler struct {
	db *gorm.DB
}

func NewStaffHandler(db *gorm.DB) *StaffHandler {
	return &StaffHandler{db: db}
}

func (h *StaffHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/staff", h.CreateStaff).Methods("POST")
	router.HandleFunc("/staff", h.GetStaff).Methods("GET")
	router.HandleFunc("/staff/{id}", h.GetStaffMember).Methods("GET")
	router.HandleFunc("/staff/{id}", h.UpdateStaff).Methods("PUT")
	router.HandleFunc("/staff/{id}", h.DeleteStaff).Methods("DELETE")
}

func (h *StaffHandler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var member models.Staff
	if err := json.NewDecoder(r.Body).Decode(&member); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if member.FullName == "" {
		http.Error(w, "Full name is required", http.StatusBadRequest)
		return
	}

	member.BusinessID = scope.BusinessID
	member.Active = true

	if err := h.db.Create(&member).Error; err != nil {
		http.Error(w, "Error creating staff member", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(member)
}

func (h *StaffHandler) GetStaff(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := h.db.Model(&models.Staff{}).Where("business_id = ?", scope.BusinessID)
	if r.URL.Query().Get("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var members []models.Staff
	if err := query.Order("full_name ASC").Find(&members).Error; err != nil {
		http.Error(w, "Error retrieving staff", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"staff": members})
}

func (h *StaffHandler) GetStaffMember(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	staffID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid staff ID", http.StatusBadRequest)
		return
	}

	var member models.Staff
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&member, staffID).Error; err != nil {
		http.Error(w, "Staff member not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(member)
}

func (h *StaffHandler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	staffID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid staff ID", http.StatusBadRequest)
		return
	}

	var member models.Staff
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&member, staffID).Error; err != nil {
		http.Error(w, "Staff member not found", http.StatusNotFound)
		return
	}

	var update struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		Active   *bool  `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if update.FullName != "" {
		updates["full_name"] = update.FullName
	}
	if update.Phone != "" {
		updates["phone"] = update.Phone
	}
	if update.Active != nil {
		updates["active"] = *update.Active
	}

	if err := h.db.Model(&member).Updates(updates).Error; err != nil {
		http.Error(w, "Error updating staff member", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(member)
}

func (h *StaffHandler) DeleteStaff(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	staffID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid staff ID", http.StatusBadRequest)
		return
	}

	// Appointments keep their staff_id; history stays attributable.
	result := h.db.Where("business_id = ?", scope.BusinessID).Delete(&models.Staff{}, staffID)
	if result.Error != nil {
		http.Error(w, "Error deleting staff member", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Staff member not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
