package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/studycore/backend/internal/database"
	"github.com/studycore/backend/internal/gamification"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	store := gamification.NewStore(db)
	service := gamification.NewService(store)

	// Seed the built-in badge catalog. The upsert keeps admin edits to
	// points/active flags only until the next deploy changes the defaults.
	if _, err := service.SeedBadgeDefinitions(context.Background(), gamification.DefaultBadgeCatalog()); err != nil {
		log.Fatalf("Failed to seed badge catalog: %v", err)
	}

	gamificationHandler := gamification.NewHandler(service)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/activity", gamificationHandler.LogActivity).Methods("POST")
	api.HandleFunc("/users/{id}/stats", gamificationHandler.GetUserStats).Methods("GET")
	api.HandleFunc("/users/{id}/badges", gamificationHandler.GetUserBadges).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/badges/seed", gamificationHandler.SeedBadges).Methods("POST")
	admin.HandleFunc("/maintenance/run", gamificationHandler.RunMaintenance).Methods("POST")
	admin.HandleFunc("/xp-config", gamificationHandler.UpdateXPConfig).Methods("PUT")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Nightly streak convergence
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.StartMaintenanceWorker(ctx)

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
