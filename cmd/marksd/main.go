package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/classledger/classledger/internal/api/http"
	auth "github.com/classledger/classledger/internal/auth/middleware"
	"github.com/classledger/classledger/internal/config"
	"github.com/classledger/classledger/internal/db"
	"github.com/classledger/classledger/internal/ledger"
	"github.com/classledger/classledger/internal/store"
)

func main() {
	cfg := config.FromEnv()

	// --- Store ---
	var st store.Store
	if cfg.DBDriver == "memory" {
		st = store.NewInMemoryStore()
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		st = store.NewSQLStore(dbh, cfg.DBDriver)
	}
	svc := ledger.NewService(st)

	// --- Auth (local JWT for offline/dev) ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, cfg.AdminUser, cfg.AdminPassHash))

	// Protected API (JWT -> subject/role in context; authorization itself
	// stays with the school's session layer).
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Exam component configuration
		pr.Post("/exams", api.CreateExamHandler(st))
		pr.Get("/exams/{examID}/components", api.GetComponentsHandler(st))
		pr.Post("/exams/{examID}/preset", api.ApplyPresetHandler(st))
		pr.Put("/exams/{examID}/components", api.UpdateComponentsHandler(st))
		pr.Post("/exams/{examID}/publish", api.PublishExamHandler(st))

		// Enrollments
		pr.Post("/enrollments", api.CreateEnrollmentHandler(st))
		pr.Get("/enrollments", api.ListEnrollmentsHandler(st))

		// Per-student ledger
		pr.Get("/enrollments/{enrollmentID}/exams/{examID}/ledger", api.GetLedgerHandler(svc))
		pr.Put("/enrollments/{enrollmentID}/exams/{examID}/marks", api.SaveMarksHandler(svc))

		// Optional-subject choices
		pr.Get("/enrollments/{enrollmentID}/optional-groups", api.GetOptionalGroupsHandler(st))
		pr.Put("/enrollments/{enrollmentID}/optional-choices", api.SaveOptionalChoicesHandler(st))

		// Grid (batch) marks entry
		pr.Get("/exams/{examID}/grid", api.PlanGridHandler(st, svc))
		pr.Post("/exams/{examID}/grid/save", api.BatchSaveHandler(st, svc))
	})

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
