package main

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/civigo/grievance-backend/internal/auth"
	"github.com/civigo/grievance-backend/internal/config"
	"github.com/civigo/grievance-backend/internal/database"
	"github.com/civigo/grievance-backend/internal/handlers"
	"github.com/civigo/grievance-backend/internal/middleware"
	"github.com/civigo/grievance-backend/internal/models"
	"github.com/civigo/grievance-backend/internal/repository"
	"github.com/civigo/grievance-backend/internal/routes"
	"github.com/civigo/grievance-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	log.Printf("Connecting to MongoDB...")
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	grievanceRepo := repository.NewMongoGrievanceRepository(database.DB)
	if err := grievanceRepo.EnsureIndexes(context.Background()); err != nil {
		log.Printf("WARNING: failed to ensure grievance indexes: %v", err)
	}
	userRepo := repository.NewPostgresUserRepository(database.PostgresDB)

	var enricher services.Enricher
	if cfg.GeminiAPIKey != "" {
		enricher = services.NewGeminiEnricher(cfg.GeminiAPIKey)
	} else {
		log.Println("WARNING: GEMINI_API_KEY not set; submissions get the fallback analysis")
		enricher = disabledEnricher{}
	}

	var federation *auth.Federation
	if cfg.FederationIssuerDomain != "" {
		federation = auth.NewFederation(cfg.FederationIssuerDomain)
	} else {
		log.Println("Federation issuer not configured; only local tokens accepted")
	}
	verifier := auth.NewVerifier([]byte(cfg.JWTSecret), federation)

	userService := services.NewUserService(userRepo, []byte(cfg.JWTSecret))
	grievanceService := services.NewGrievanceService(grievanceRepo, enricher, cfg.ResolvePolicy)
	h := handlers.NewHandler(userService, grievanceService)

	r := chi.NewRouter()
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(database.RedisClient))
		routes.SetupRoutes(r, h, routes.Options{
			Verifier:                  verifier,
			AllGrievancesOfficialOnly: cfg.AllGrievancesOfficialOnly,
		})
	})

	log.Printf("Grievance backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// disabledEnricher forces the fallback path when no provider key is
// configured.
type disabledEnricher struct{}

func (disabledEnricher) Classify(ctx context.Context, description, subject string) (models.AIAnalysis, error) {
	return models.AIAnalysis{}, errors.New("enrichment provider not configured")
}
