package appointment

import (
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/models"
	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/utils"
)

// ExportICS renders the expanded occurrences of a window as an iCalendar
// feed, so the agenda can be subscribed to from any calendar client.
func (h *AppointmentHandler) ExportICS(w http.ResponseWriter, r *http.Request) {
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

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)

	now := time.Now()
	for _, occ := range result.Occurrences {
		event := cal.AddEvent(occ.ID)
		event.SetCreatedTime(now)
		event.SetDtStampTime(now)
		event.SetStartAt(occ.StartAt)
		event.SetEndAt(occ.EndAt)
		event.SetSummary(occ.Title)
		if occ.Status == models.StatusDone {
			event.SetStatus(ics.ObjectStatusConfirmed)
		} else {
			event.SetStatus(ics.ObjectStatusTentative)
		}
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename=agenda.ics")
	if _, err := w.Write([]byte(cal.Serialize())); err != nil {
		// Response already started, nothing sensible to send.
		return
	}
}
