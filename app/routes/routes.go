package routes

import (
	"encoding/json"
	"net/http"

	"volunvibe/app/auth"
	"volunvibe/app/controllers"
	"volunvibe/app/middleware"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Controllers groups the handlers mounted by SetupRoutes.
type Controllers struct {
	Posts    *controllers.PostController
	Requests *controllers.RequestController
	Auth     *controllers.AuthController
	Health   *controllers.HealthController
}

// SetupRoutes defines the application's routes and returns the handler to
// serve, wrapped in CORS for the allowed origins.
func SetupRoutes(c Controllers, verifier auth.Verifier, origins []string, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer(logger))
	router.Use(middleware.ContentTypeJSON)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
	})

	requireAuth := middleware.RequireAuth(verifier, logger)
	protected := func(h http.HandlerFunc) http.Handler {
		return requireAuth(h)
	}

	// Liveness
	router.HandleFunc("/", c.Health.Root).Methods("GET")
	router.HandleFunc("/healthz", c.Health.Healthz).Methods("GET")

	// Identity cookie
	router.HandleFunc("/jwt", c.Auth.Issue).Methods("POST")
	router.HandleFunc("/jwtLogout", c.Auth.Logout).Methods("GET")

	// Posts
	router.HandleFunc("/needVolunteer", c.Posts.Index).Methods("GET")
	router.HandleFunc("/topNeedVolunteer", c.Posts.Top).Methods("GET")
	router.HandleFunc("/volunteerPost/{id}", c.Posts.Show).Methods("GET")
	router.HandleFunc("/addPost", c.Posts.Create).Methods("POST")
	router.Handle("/post/{email}", protected(c.Posts.ByOrganizer)).Methods("GET")
	router.Handle("/updatePost/{id}", protected(c.Posts.Update)).Methods("PUT")
	router.HandleFunc("/post/{id}", c.Posts.Delete).Methods("DELETE")

	// Volunteer requests
	router.HandleFunc("/volunteerRequest", c.Requests.Create).Methods("POST")
	router.HandleFunc("/volunteerRequest", c.Requests.Index).Methods("GET")
	router.Handle("/requesPost/{email}", protected(c.Requests.ByVolunteer)).Methods("GET")
	router.HandleFunc("/requestPost/{id}", c.Requests.Delete).Methods("DELETE")

	return middleware.CORS(origins)(router)
}
