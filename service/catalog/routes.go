package catalog

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/utils"
)

type ServiceHandler struct {
	db *gorm.DB
}

func NewServiceHandler(db *gorm.DB) *ServiceHandler {
	return &ServiceHandler{db: db}
}

func (h *ServiceHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/services", h.CreateService).Methods("POST")
	router.HandleFunc("/services", h.GetServices).Methods("GET")
	router.HandleFunc("/services/{id}", h.UpdateService).Methods("PUT")
	router.HandleFunc("/services/{id}", h.DeleteService).Methods("DELETE")
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var service models.Service
	if err := json.NewDecoder(r.Body).Decode(&service); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if service.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}
	if service.DefaultDurationMin <= 0 {
		service.DefaultDurationMin = 30
	}

	service.BusinessID = scope.BusinessID
	service.Active = true

	if err := h.db.Create(&service).Error; err != nil {
		http.Error(w, "Error creating service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(service)
}

func (h *ServiceHandler) GetServices(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	query := h.db.Model(&models.Service{}).Where("business_id = ?", scope.BusinessID)
	if r.URL.Query().Get("active") == "true" {
		query = query.Where("active = ?", true)
	}

	var services []models.Service
	if err := query.Order("name ASC").Find(&services).Error; err != nil {
		http.Error(w, "Error retrieving services", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"services": services})
}

func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	serviceID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	var service models.Service
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&service, serviceID).Error; err != nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	var update struct {
		Name               string   `json:"name"`
		Price              *float64 `json:"price"`
		DefaultDurationMin *int     `json:"default_duration_min"`
		Active             *bool    `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{}
	if update.Name != "" {
		updates["name"] = update.Name
	}
	if update.Price != nil {
		updates["price"] = *update.Price
	}
	if update.DefaultDurationMin != nil {
		updates["default_duration_min"] = *update.DefaultDurationMin
	}
	if update.Active != nil {
		updates["active"] = *update.Active
	}

	if err := h.db.Model(&service).Updates(updates).Error; err != nil {
		http.Error(w, "Error updating service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(service)
}

func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	serviceID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid service ID", http.StatusBadRequest)
		return
	}

	result := h.db.Where("business_id = ?", scope.BusinessID).Delete(&models.Service{}, serviceID)
	if result.Error != nil {
		http.Error(w, "Error deleting service", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
