package api

import (
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/stephanyes/estudio-maker-turnos-sub000/cmd/utils"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/appointment"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/catalog"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/client"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/staff"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/stats"
	"github.com/stephanyes/estudio-maker-turnos-sub000/service/user"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	protected := subrouter.PathPrefix("/").Subrouter()
	protected.Use(utils.AuthMiddleware)

	appointmentHandler := appointment.NewAppointmentHandler(s.db)
	appointmentHandler.RegisterRoutes(protected)

	clientHandler := client.NewClientHandler(s.db)
	clientHandler.RegisterRoutes(protected)

	staffHandler := staff.NewStaffHandler(s.db)
	staffHandler.RegisterRoutes(protected)

	catalogHandler := catalog.NewServiceHandler(s.db)
	catalogHandler.RegisterRoutes(protected)

	statsHandler := stats.NewStatsHandler(s.db)
	statsHandler.RegisterRoutes(protected)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
