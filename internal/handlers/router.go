package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/getlims/limsgo/internal/buildinfo"
	"github.com/getlims/limsgo/internal/config"
	"github.com/getlims/limsgo/internal/database"
	"github.com/getlims/limsgo/internal/middleware"
	"github.com/getlims/limsgo/internal/services/crm"
	"github.com/getlims/limsgo/internal/websocket"
	"github.com/gorilla/mux"
)

// Router wraps the mux router and database
type Router struct {
	*mux.Router
	db  *database.DB
	cfg *config.Config
	hub *websocket.Hub
	crm *crm.SyncService
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(db *database.DB, cfg *config.Config, hub *websocket.Hub) *Router {
	r := &Router{
		Router: mux.NewRouter(),
		db:     db,
		cfg:    cfg,
		hub:    hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")
	auth.HandleFunc("/register", r.register).Methods("POST")

	// Live inventory event feed
	if hub != nil {
		r.HandleFunc("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(hub, w, req)
		})
	}

	// API routes (protected)
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(cfg.JWTSecret))

	// Inventory: items, properties, transfers
	inv := api.PathPrefix("/inventory").Subrouter()
	inv.HandleFunc("/items", r.listItems).Methods("GET")
	inv.HandleFunc("/items", r.createItem).Methods("POST")
	inv.HandleFunc("/items/{id}", r.getItem).Methods("GET")
	inv.HandleFunc("/items/{id}", r.updateItem).Methods("PUT")
	inv.HandleFunc("/items/{id}", r.deleteItem).Methods("DELETE")
	inv.HandleFunc("/items/{id}/transfers", r.listTransfers).Methods("GET")
	inv.HandleFunc("/items/{id}/transfers", r.createTransfer).Methods("POST")
	inv.HandleFunc("/transfers/{id}/complete", r.completeTransfer).Methods("POST")
	inv.HandleFunc("/items/{id}/properties", r.createItemProperty).Methods("POST")
	inv.HandleFunc("/properties/{id}", r.deleteItemProperty).Methods("DELETE")

	// Inventory: taxonomy and storage trees
	inv.HandleFunc("/itemtypes", r.listItemTypes).Methods("GET")
	inv.HandleFunc("/itemtypes", r.createItemType).Methods("POST")
	inv.HandleFunc("/itemtypes/{id}", r.getItemType).Methods("GET")
	inv.HandleFunc("/itemtypes/{id}", r.updateItemType).Methods("PUT")
	inv.HandleFunc("/itemtypes/{id}", r.deleteItemType).Methods("DELETE")
	inv.HandleFunc("/locations", r.listLocations).Methods("GET")
	inv.HandleFunc("/locations", r.createLocation).Methods("POST")
	inv.HandleFunc("/locations/{id}", r.getLocation).Methods("GET")
	inv.HandleFunc("/locations/{id}", r.updateLocation).Methods("PUT")
	inv.HandleFunc("/locations/{id}", r.deleteLocation).Methods("DELETE")

	// Inventory: reference lists and sets
	inv.HandleFunc("/measures", r.listMeasures).Methods("GET")
	inv.HandleFunc("/measures", r.createMeasure).Methods("POST")
	inv.HandleFunc("/measures/{id}", r.deleteMeasure).Methods("DELETE")
	inv.HandleFunc("/tags", r.listTags).Methods("GET")
	inv.HandleFunc("/tags", r.createTag).Methods("POST")
	inv.HandleFunc("/tags/{id}", r.deleteTag).Methods("DELETE")
	inv.HandleFunc("/sets", r.listSets).Methods("GET")
	inv.HandleFunc("/sets", r.createSet).Methods("POST")
	inv.HandleFunc("/sets/{id}", r.getSet).Methods("GET")
	inv.HandleFunc("/sets/{id}", r.deleteSet).Methods("DELETE")

	// Projects and products
	api.HandleFunc("/projects", r.listProjects).Methods("GET")
	api.HandleFunc("/projects", r.createProject).Methods("POST")
	api.HandleFunc("/projects/{id}", r.getProject).Methods("GET")
	api.HandleFunc("/projects/{id}", r.updateProject).Methods("PUT")
	api.HandleFunc("/projects/{id}", r.deleteProject).Methods("DELETE")
	api.HandleFunc("/projects/{id}/worklogs", r.listWorkLogs).Methods("GET")
	api.HandleFunc("/projects/{id}/worklogs", r.createWorkLog).Methods("POST")
	api.HandleFunc("/products", r.listProducts).Methods("GET")
	api.HandleFunc("/products", r.createProduct).Methods("POST")
	api.HandleFunc("/products/{id}", r.getProduct).Methods("GET")
	api.HandleFunc("/products/{id}", r.updateProduct).Methods("PUT")
	api.HandleFunc("/products/{id}", r.deleteProduct).Methods("DELETE")
	api.HandleFunc("/products/{id}/comments", r.listComments).Methods("GET")
	api.HandleFunc("/products/{id}/comments", r.createComment).Methods("POST")
	api.HandleFunc("/products/{id}/inventory", r.linkProductInventory).Methods("POST")
	api.HandleFunc("/products/{id}/inventory/{itemId}", r.unlinkProductInventory).Methods("DELETE")
	api.HandleFunc("/productstatuses", r.listProductStatuses).Methods("GET")
	api.HandleFunc("/productstatuses", r.createProductStatus).Methods("POST")
	api.HandleFunc("/productstatuses/{id}", r.deleteProductStatus).Methods("DELETE")

	// CRM mirrors
	api.HandleFunc("/crm/accounts", r.listCRMAccounts).Methods("GET")
	api.HandleFunc("/crm/accounts/{id}/user", r.linkCRMAccountUser).Methods("POST")
	api.HandleFunc("/crm/projects", r.listCRMProjects).Methods("GET")
	api.HandleFunc("/crm/quotes", r.listCRMQuotes).Methods("GET")
	api.HandleFunc("/crm/sync", r.triggerCRMSync).Methods("POST")

	// Label printing
	api.HandleFunc("/labels", r.generateLabels).Methods("POST")

	return r
}

// SetCRMService registers the CRM sync service for the refresh endpoint
func (r *Router) SetCRMService(svc *crm.SyncService) {
	r.crm = svc
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"version":    buildinfo.Version,
		"commit":     buildinfo.CommitHash,
		"build_time": buildinfo.BuildTime,
		"started_at": buildinfo.StartTime,
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// toMap converts a serializable value into its JSON object form, used when
// comparing incoming payloads against the current record
func toMap(v interface{}) map[string]interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
