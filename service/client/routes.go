package client

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/utils"
)

type ClientHandler struct {
	db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

func (h *ClientHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/clients", h.CreateClient).Methods("POST")
	router.HandleFunc("/clients", h.GetClients).Methods("GET")
	router.HandleFunc("/clients/{id}", h.GetClient).Methods("GET")
	router.HandleFunc("/clients/{id}", h.UpdateClient).Methods("PUT")
	router.HandleFunc("/clients/{id}", h.DeleteClient).Methods("DELETE")
	router.HandleFunc("/clients/{id}/history", h.GetClientHistory).Methods("GET")
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var client models.Client
	if err := json.NewDecoder(r.Body).Decode(&client); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if client.FullName == "" {
		http.Error(w, "Full name is required", http.StatusBadRequest)
		return
	}

	client.BusinessID = scope.BusinessID
	client.VisitCount = 0
	client.CancelCount = 0

	if err := h.db.Create(&client).Error; err != nil {
		http.Error(w, "Error creating client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) GetClients(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize := 100

	query := h.db.Model(&models.Client{}).Where("business_id = ?", scope.BusinessID)

	if search := r.URL.Query().Get("search"); search != "" {
		query = query.Where("full_name ILIKE ?", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var clients []models.Client
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("full_name ASC").Find(&clients).Error; err != nil {
		http.Error(w, "Error retrieving clients", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"clients":     clients,
		"total":       total,
		"page":        page,
		"page_size":   pageSize,
		"total_pages": (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var client models.Client
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&client, clientID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var client models.Client
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&client, clientID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	var update struct {
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
		Email    string `json:"email"`
		Notes    string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Counters are engine-owned and never writable through this endpoint.
	if err := h.db.Model(&client).Updates(map[string]interface{}{
		"full_name": update.FullName,
		"phone":     update.Phone,
		"email":     update.Email,
		"notes":     update.Notes,
	}).Error; err != nil {
		http.Error(w, "Error updating client", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	result := h.db.Where("business_id = ?", scope.BusinessID).Delete(&models.Client{}, clientID)
	if result.Error != nil {
		http.Error(w, "Error deleting client", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetClientHistory returns the append-only visit/cancellation log.
func (h *ClientHandler) GetClientHistory(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	clientID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid client ID", http.StatusBadRequest)
		return
	}

	var client models.Client
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&client, clientID).Error; err != nil {
		http.Error(w, "Client not found", http.StatusNotFound)
		return
	}

	var history []models.ClientHistory
	if err := h.db.Where("business_id = ? AND client_id = ?", scope.BusinessID, clientID).
		Order("occurred_at DESC").Find(&history).Error; err != nil {
		http.Error(w, "Error retrieving history", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"client":  client,
		"history": history,
	})
}
