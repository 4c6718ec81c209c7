package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/spezi-dev/spezi/pkg/contextkeys"
	"github.com/spezi-dev/spezi/pkg/middleware"
	"github.com/spezi-dev/spezi/pkg/observability"
	"github.com/spezi-dev/spezi/pkg/repository"
)

// Server represents our API server
type Server struct {
	repos   *repository.Repositories
	authMW  *middleware.AuthMiddleware
	logger  *observability.Logger
	metrics *observability.Metrics
	router  *mux.Router
}

// NewServer creates a new API server with every route registered behind
// authentication
func NewServer(repos *repository.Repositories, authMW *middleware.AuthMiddleware, logger *observability.Logger, metrics *observability.Metrics) *Server {
	s := &Server{
		repos:   repos,
		authMW:  authMW,
		logger:  logger,
		metrics: metrics,
		router:  mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes. Middleware registered with
// Use runs after route matching, so metrics see the route template.
func (s *Server) setupRoutes() {
	s.router.Use(observability.HTTPMetricsMiddleware(s.metrics))
	s.router.Use(s.authMW.Authenticate)

	s.router.HandleFunc("/", s.routeDirectory).Methods(http.MethodGet)

	// API users
	s.router.Handle("/api-users", s.admin(s.listAPIUsers)).Methods(http.MethodGet)
	s.router.Handle("/api-users", s.admin(s.createAPIUser)).Methods(http.MethodPost)
	s.router.Handle("/api-users/{key}", s.admin(s.getAPIUser)).Methods(http.MethodGet)
	s.router.Handle("/api-users/{key}", s.admin(s.updateAPIUser)).Methods(http.MethodPatch)
	s.router.Handle("/api-users/{key}", s.admin(s.deleteAPIUser)).Methods(http.MethodDelete)

	// Users
	s.router.HandleFunc("/users", s.listUsers).Methods(http.MethodGet)
	s.router.Handle("/users", s.admin(s.createUser)).Methods(http.MethodPost)
	s.router.HandleFunc("/users/{id}", s.getUser).Methods(http.MethodGet)
	s.router.Handle("/users/{id}", s.admin(s.deleteUser)).Methods(http.MethodDelete)

	// Products
	s.router.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	s.router.Handle("/products", s.admin(s.createProduct)).Methods(http.MethodPost)
	s.router.HandleFunc("/products/{id}", s.getProduct).Methods(http.MethodGet)
	s.router.Handle("/products/{id}", s.admin(s.deleteProduct)).Methods(http.MethodDelete)

	// Orders are open to any registered key
	s.router.HandleFunc("/orders", s.listOrders).Methods(http.MethodGet)
	s.router.HandleFunc("/orders", s.createOrder).Methods(http.MethodPost)
	s.router.HandleFunc("/orders/{id}", s.getOrder).Methods(http.MethodGet)
	s.router.HandleFunc("/orders/{id}", s.deleteOrder).Methods(http.MethodDelete)

	// Unmatched requests skip Use middleware
	s.router.NotFoundHandler = s.authMW.Authenticate(http.HandlerFunc(notFound))
	s.router.MethodNotAllowedHandler = s.authMW.Authenticate(http.HandlerFunc(methodNotAllowed))
}

// admin wraps h so that only admin keys reach it
func (s *Server) admin(h http.HandlerFunc) http.Handler {
	return s.authMW.RequireAdmin(h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router, e.g. for walking routes
func (s *Server) Router() *mux.Router {
	return s.router
}

// log returns the server logger annotated with the request id
func (s *Server) log(r *http.Request) *observability.Logger {
	if id := contextkeys.GetRequestID(r.Context()); id != "" {
		return s.logger.WithField("request_id", id)
	}
	return s.logger
}
