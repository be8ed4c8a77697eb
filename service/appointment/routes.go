package appointment

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"gopkg.in/gomail.v2"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/utils"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/schedule"
)

type AppointmentHandler struct {
	db     *gorm.DB
	engine *schedule.Engine
	store  *schedule.GormStore
}

func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	store := schedule.NewGormStore(db)
	return &AppointmentHandler{
		db:     db,
		engine: schedule.NewEngine(store, store, store, schedule.SystemClock),
		store:  store,
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/appointments", h.CreateAppointment).Methods("POST")
	router.HandleFunc("/appointments", h.GetAppointments).Methods("GET")
	router.HandleFunc("/appointments/occurrences", h.GetOccurrences).Methods("GET")
	router.HandleFunc("/appointments/availability", h.CheckAvailability).Methods("GET")
	router.HandleFunc("/appointments/export.ics", h.ExportICS).Methods("GET")
	router.HandleFunc("/appointments/{id}", h.GetAppointment).Methods("GET")
	router.HandleFunc("/appointments/{id}", h.UpdateAppointment).Methods("PUT")
	router.HandleFunc("/appointments/{id}", h.DeleteAppointment).Methods("DELETE")
	router.HandleFunc("/appointments/{id}/exceptions", h.CreateException).Methods("POST")
	router.HandleFunc("/appointments/{id}/cancel", h.CancelAppointment).Methods("PATCH")
	router.HandleFunc("/appointments/{id}/complete", h.CompleteAppointment).Methods("PATCH")
	router.HandleFunc("/appointments/{id}/payment", h.UpdatePaymentStatus).Methods("PATCH")
}

func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var appointment models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appointment.BusinessID = scope.BusinessID
	if appointment.Status == "" {
		appointment.Status = models.StatusPending
	}
	if appointment.IsRecurring && appointment.Interval == 0 {
		appointment.Interval = 1
	}

	if err := appointment.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Service catalog lookup fills title and price defaults.
	if appointment.ServiceID != nil {
		var service models.Service
		if err := h.db.Where("business_id = ?", scope.BusinessID).First(&service, *appointment.ServiceID).Error; err != nil {
			http.Error(w, "Service not found", http.StatusNotFound)
			return
		}
		if appointment.Title == "" {
			appointment.Title = service.Name
		}
		if appointment.ListPrice == 0 {
			appointment.ListPrice = service.Price
		}
	} else if appointment.CustomService != "" {
		if appointment.Title == "" {
			appointment.Title = appointment.CustomService
		}
		if appointment.ListPrice == 0 {
			appointment.ListPrice = appointment.CustomPrice
		}
	}
	if appointment.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}
	if appointment.FinalPrice == 0 {
		appointment.FinalPrice = appointment.ListPrice * (1 - appointment.DiscountPct/100)
	}

	available, err := h.engine.IsSlotAvailable(r.Context(), scope.BusinessID,
		appointment.StartAt, appointment.DurationMin, 0, appointment.StaffID)
	if err != nil {
		http.Error(w, "Error checking availability", http.StatusInternalServerError)
		return
	}
	if !available {
		http.Error(w, "Time slot already booked for this staff member", http.StatusConflict)
		return
	}

	if err := h.db.Create(&appointment).Error; err != nil {
		http.Error(w, "Error creating appointment", http.StatusInternalServerError)
		return
	}

	appointment.PaymentRef = fmt.Sprintf("APT-%d-%d", appointment.ID, time.Now().Unix())
	if err := h.db.Model(&appointment).Update("payment_ref", appointment.PaymentRef).Error; err != nil {
		http.Error(w, "Error saving payment reference", http.StatusInternalServerError)
		return
	}

	// Confirmation mail goes out in the background; booking never waits on SMTP.
	if appointment.ClientID != nil {
		var client models.Client
		if err := h.db.First(&client, *appointment.ClientID).Error; err == nil && client.Email != "" {
			go func(email, title string, startAt time.Time) {
				if err := sendConfirmationEmail(email, title, startAt); err != nil {
					log.Printf("Error sending confirmation email: %v", err)
				}
			}(client.Email, appointment.Title, appointment.StartAt)
		}
	}

	h.db.Preload("Client").Preload("Service").Preload("Staff").First(&appointment, appointment.ID)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
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

	query := h.db.Model(&models.Appointment{}).
		Where("business_id = ?", scope.BusinessID).
		Preload("Client").Preload("Service").Preload("Staff")

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if staffID := r.URL.Query().Get("staff_id"); staffID != "" {
		query = query.Where("staff_id = ?", staffID)
	}
	if clientID := r.URL.Query().Get("client_id"); clientID != "" {
		query = query.Where("client_id = ?", clientID)
	}

	var total int64
	query.Count(&total)

	var appointments []models.Appointment
	if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("start_at DESC").Find(&appointments).Error; err != nil {
		http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"appointments": appointments,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
		"total_pages":  (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetOccurrences expands every appointment intersecting the requested
// window, recurrences included, exceptions applied.
func (h *AppointmentHandler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		http.Error(w, "Invalid or missing from parameter (RFC3339)", http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		http.Error(w, "Invalid or missing to parameter (RFC3339)", http.StatusBadRequest)
		return
	}

	result, err := h.engine.Expand(r.Context(), scope.BusinessID, from, to)
	if err != nil {
		http.Error(w, "Error expanding occurrences", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func (h *AppointmentHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		http.Error(w, "Invalid or missing start parameter (RFC3339)", http.StatusBadRequest)
		return
	}
	durationMin, err := strconv.Atoi(r.URL.Query().Get("duration_min"))
	if err != nil || durationMin <= 0 {
		http.Error(w, "Invalid duration_min parameter", http.StatusBadRequest)
		return
	}

	var staffID *uint
	if s := r.URL.Query().Get("staff_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "Invalid staff_id parameter", http.StatusBadRequest)
			return
		}
		v := uint(id)
		staffID = &v
	}

	var ignoreID uint
	if s := r.URL.Query().Get("ignore_id"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "Invalid ignore_id parameter", http.StatusBadRequest)
			return
		}
		ignoreID = uint(id)
	}

	available, err := h.engine.IsSlotAvailable(r.Context(), scope.BusinessID, start, durationMin, ignoreID, staffID)
	if err != nil {
		http.Error(w, "Error checking availability", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"available": available})
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.Where("business_id = ?", scope.BusinessID).
		Preload("Client").Preload("Service").Preload("Staff").
		First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appointment)
}

func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if appointment.Status == models.StatusCancelled {
		http.Error(w, "Cancelled appointments cannot be edited", http.StatusUnprocessableEntity)
		return
	}

	var updated models.Appointment
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	updated.ID = appointment.ID
	updated.CreatedAt = appointment.CreatedAt
	updated.BusinessID = scope.BusinessID
	if updated.Status == "" {
		updated.Status = appointment.Status
	}
	if updated.IsRecurring && updated.Interval == 0 {
		updated.Interval = 1
	}

	if err := updated.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Editing in place: the appointment's own occurrences do not conflict.
	available, err := h.engine.IsSlotAvailable(r.Context(), scope.BusinessID,
		updated.StartAt, updated.DurationMin, appointment.ID, updated.StaffID)
	if err != nil {
		http.Error(w, "Error checking availability", http.StatusInternalServerError)
		return
	}
	if !available {
		http.Error(w, "Time slot already booked for this staff member", http.StatusConflict)
		return
	}

	if err := h.db.Save(&updated).Error; err != nil {
		http.Error(w, "Error updating appointment", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	tx := h.db.Begin()

	result := tx.Where("business_id = ?", scope.BusinessID).Delete(&models.Appointment{}, appointmentID)
	if result.Error != nil {
		tx.Rollback()
		http.Error(w, "Error deleting appointment", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	// Orphaned exceptions would silently resurrect if the id is reused.
	if err := tx.Where("appointment_id = ?", appointmentID).
		Delete(&models.AppointmentException{}).Error; err != nil {
		tx.Rollback()
		http.Error(w, "Error deleting appointment exceptions", http.StatusInternalServerError)
		return
	}

	if err := tx.Commit().Error; err != nil {
		http.Error(w, "Error completing deletion", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateException records a skip or move override for one generated
// instance of a recurring appointment.
func (h *AppointmentHandler) CreateException(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var exceptionRequest struct {
		OriginalStartAt time.Time  `json:"original_start_at"`
		Kind            string     `json:"kind"`
		NewStartAt      *time.Time `json:"new_start_at"`
		NewDurationMin  *int       `json:"new_duration_min"`
	}
	if err := json.NewDecoder(r.Body).Decode(&exceptionRequest); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if exceptionRequest.Kind != models.ExceptionSkip && exceptionRequest.Kind != models.ExceptionMove {
		http.Error(w, "Kind must be skip or move", http.StatusBadRequest)
		return
	}

	var appointment models.Appointment
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if !appointment.IsRecurring {
		http.Error(w, "Exceptions only apply to recurring appointments", http.StatusBadRequest)
		return
	}

	rule, err := schedule.RuleForAppointment(&appointment)
	if err != nil {
		http.Error(w, "Appointment has an invalid recurrence rule", http.StatusUnprocessableEntity)
		return
	}
	orig := exceptionRequest.OriginalStartAt
	if len(rule.Between(orig, orig, true)) == 0 {
		http.Error(w, "original_start_at is not an instance of this appointment", http.StatusBadRequest)
		return
	}

	if exceptionRequest.Kind == models.ExceptionMove {
		newStart := orig
		if exceptionRequest.NewStartAt != nil {
			newStart = *exceptionRequest.NewStartAt
		}
		durationMin := appointment.DurationMin
		if exceptionRequest.NewDurationMin != nil {
			durationMin = *exceptionRequest.NewDurationMin
		}
		if durationMin <= 0 {
			http.Error(w, "new_duration_min must be positive", http.StatusBadRequest)
			return
		}

		available, err := h.engine.IsSlotAvailable(r.Context(), scope.BusinessID,
			newStart, durationMin, appointment.ID, appointment.StaffID)
		if err != nil {
			http.Error(w, "Error checking availability", http.StatusInternalServerError)
			return
		}
		if !available {
			http.Error(w, "Target slot already booked for this staff member", http.StatusConflict)
			return
		}
	}

	exception := models.AppointmentException{
		BusinessID:      scope.BusinessID,
		AppointmentID:   appointment.ID,
		OriginalStartAt: orig,
		Kind:            exceptionRequest.Kind,
		NewStartAt:      exceptionRequest.NewStartAt,
		NewDurationMin:  exceptionRequest.NewDurationMin,
	}

	if err := h.db.Create(&exception).Error; err != nil {
		http.Error(w, "Error creating exception", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(exception)
}

// CancelAppointment cancels a whole appointment, or a single occurrence of
// a recurring one when occurrence_start_at is provided. Occurrences whose
// start lies more than 24 hours in the past can no longer be cancelled.
func (h *AppointmentHandler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var cancelRequest struct {
		OccurrenceStartAt *time.Time `json:"occurrence_start_at"`
		Reason            string     `json:"reason"`
	}
	if r.Body != nil {
		// An empty body cancels the whole appointment with no reason.
		_ = json.NewDecoder(r.Body).Decode(&cancelRequest)
	}

	var appointment models.Appointment
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if appointment.Status == models.StatusCancelled {
		http.Error(w, "Appointment is already cancelled", http.StatusConflict)
		return
	}

	occurrenceStart := appointment.StartAt
	if cancelRequest.OccurrenceStartAt != nil {
		occurrenceStart = *cancelRequest.OccurrenceStartAt
	}

	if err := schedule.CheckCancellable(occurrenceStart, time.Now()); err != nil {
		if errors.Is(err, schedule.ErrTooLateToCancel) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Error validating cancellation", http.StatusInternalServerError)
		return
	}

	if appointment.IsRecurring && cancelRequest.OccurrenceStartAt != nil {
		// Single-instance cancel: a skip exception, not a status change.
		rule, err := schedule.RuleForAppointment(&appointment)
		if err != nil {
			http.Error(w, "Appointment has an invalid recurrence rule", http.StatusUnprocessableEntity)
			return
		}
		if len(rule.Between(occurrenceStart, occurrenceStart, true)) == 0 {
			http.Error(w, "occurrence_start_at is not an instance of this appointment", http.StatusBadRequest)
			return
		}

		exception := models.AppointmentException{
			BusinessID:      scope.BusinessID,
			AppointmentID:   appointment.ID,
			OriginalStartAt: occurrenceStart,
			Kind:            models.ExceptionSkip,
		}
		if err := h.db.Create(&exception).Error; err != nil {
			http.Error(w, "Error cancelling occurrence", http.StatusInternalServerError)
			return
		}
	} else {
		if err := h.db.Model(&appointment).Updates(map[string]interface{}{
			"status":         models.StatusCancelled,
			"payment_status": refundIfPaid(appointment.PaymentStatus),
		}).Error; err != nil {
			http.Error(w, "Error cancelling appointment", http.StatusInternalServerError)
			return
		}
	}

	if appointment.ClientID != nil {
		if err := h.store.RecordCancellation(r.Context(), scope.BusinessID,
			*appointment.ClientID, appointment.ID, cancelRequest.Reason); err != nil {
			http.Error(w, "Error recording cancellation", http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Appointment cancelled successfully",
	})
}

// CompleteAppointment marks an appointment done and stores when the work
// actually happened, which may differ from the scheduled slot.
func (h *AppointmentHandler) CompleteAppointment(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var completeRequest struct {
		StartedAt         *time.Time `json:"started_at"`
		CompletedAt       *time.Time `json:"completed_at"`
		ActualDurationMin *int       `json:"actual_duration_min"`
	}
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&completeRequest)
	}

	var appointment models.Appointment
	if err := h.db.Where("business_id = ?", scope.BusinessID).First(&appointment, appointmentID).Error; err != nil {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}
	if appointment.Status == models.StatusCancelled {
		http.Error(w, "Cancelled appointments cannot be completed", http.StatusUnprocessableEntity)
		return
	}

	startedAt := appointment.StartAt
	if completeRequest.StartedAt != nil {
		startedAt = *completeRequest.StartedAt
	}
	completedAt := time.Now()
	if completeRequest.CompletedAt != nil {
		completedAt = *completeRequest.CompletedAt
	}
	actualDuration := int(completedAt.Sub(startedAt).Minutes())
	if completeRequest.ActualDurationMin != nil {
		actualDuration = *completeRequest.ActualDurationMin
	}

	if err := h.db.Model(&appointment).Updates(map[string]interface{}{
		"status":              models.StatusDone,
		"started_at":          startedAt,
		"completed_at":        completedAt,
		"actual_duration_min": actualDuration,
	}).Error; err != nil {
		http.Error(w, "Error completing appointment", http.StatusInternalServerError)
		return
	}

	if appointment.ClientID != nil {
		seen, err := h.store.HasVisit(r.Context(), appointment.ID)
		if err != nil {
			http.Error(w, "Error checking visit history", http.StatusInternalServerError)
			return
		}
		if !seen {
			if err := h.store.RecordVisitCompleted(r.Context(), scope.BusinessID,
				*appointment.ClientID, appointment.ID, completedAt); err != nil {
				http.Error(w, "Error recording visit", http.StatusInternalServerError)
				return
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Appointment completed successfully",
	})
}

// UpdatePaymentStatus updates the payment sub-record of an appointment.
func (h *AppointmentHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	scope, err := utils.GetScope(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	vars := mux.Vars(r)
	appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
	if err != nil {
		http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
		return
	}

	var paymentUpdate struct {
		PaymentStatus string `json:"payment_status"`
		PaymentMethod string `json:"payment_method"`
		PaymentNotes  string `json:"payment_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&paymentUpdate); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	switch paymentUpdate.PaymentStatus {
	case models.PaymentUnpaid, models.PaymentPaid, models.PaymentRefunded:
	default:
		http.Error(w, "Invalid payment status", http.StatusBadRequest)
		return
	}

	updates := map[string]interface{}{
		"payment_status": paymentUpdate.PaymentStatus,
	}
	if paymentUpdate.PaymentMethod != "" {
		updates["payment_method"] = paymentUpdate.PaymentMethod
	}
	if paymentUpdate.PaymentNotes != "" {
		updates["payment_notes"] = paymentUpdate.PaymentNotes
	}

	result := h.db.Model(&models.Appointment{}).
		Where("id = ? AND business_id = ?", appointmentID, scope.BusinessID).
		Updates(updates)

	if result.Error != nil {
		http.Error(w, "Error updating payment status", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Appointment not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Payment status updated successfully",
	})
}

func refundIfPaid(paymentStatus string) string {
	if paymentStatus == models.PaymentPaid {
		return models.PaymentRefunded
	}
	return paymentStatus
}

func sendConfirmationEmail(email, title string, startAt time.Time) error {
	smtpHost := os.Getenv("SMTP_HOST")
	smtpPort := os.Getenv("SMTP_PORT")
	smtpUser := os.Getenv("SMTP_USER")
	smtpPass := os.Getenv("SMTP_PASS")
	if smtpHost == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", smtpUser)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Appointment confirmed")
	m.SetBody("text/plain", fmt.Sprintf("Your appointment %q is confirmed for %s.",
		title, startAt.Format("Monday, 02 Jan 2006 15:04")))

	port, err := strconv.Atoi(smtpPort)
	if err != nil {
		return fmt.Errorf("invalid SMTP port: %v", err)
	}
	d := gomail.NewDialer(smtpHost, port, smtpUser, smtpPass)

	return d.DialAndSend(m)
}
