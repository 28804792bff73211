package config

import (
	"os"
	"strings"
)

// ResolvePolicy controls who may move a grievance to "Resolved".
type ResolvePolicy string

const (
	// ResolveAny matches the reference behavior: any authenticated caller.
	ResolveAny ResolvePolicy = "any"
	// ResolveOfficial restricts resolution to officials.
	ResolveOfficial ResolvePolicy = "official"
	// ResolveOwnerOrOfficial allows the submitting citizen or any official.
	ResolveOwnerOrOfficial ResolvePolicy = "owner-or-official"
)

type Config struct {
	MongoURI    string
	PostgresURI string
	RedisURI    string
	JWTSecret   string
	Port        string
	Environment string // ENV: production, development, etc.

	// CORS allow list, from ALLOWED_ORIGINS or FRONTEND_URL.
	AllowedOrigins []string

	// Federation (external identity provider). Tokens signed RS256 are
	// verified against this issuer's published JWKS.
	FederationIssuerDomain string

	// Enrichment provider.
	GeminiAPIKey string

	// Policy knobs; see DESIGN.md for the defaults chosen where the
	// reference deployments disagreed.
	AllGrievancesOfficialOnly bool
	ResolvePolicy             ResolvePolicy
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		if u := strings.TrimSpace(getEnv("FRONTEND_URL", "http://localhost:5173")); u != "" {
			allowedOrigins = append(allowedOrigins, u)
		}
	}

	return &Config{
		MongoURI:    getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/grievances")),
		PostgresURI: getEnv("POSTGRES_URI", "postgres://localhost:5432/grievances?sslmode=disable"),
		RedisURI:    getEnv("REDIS_URI", "redis://localhost:6379/0"),
		JWTSecret:   getEnv("JWT_SECRET", "supersecretkey_change_this_later"),
		Port:        getEnv("PORT", "3000"),
		Environment: env,

		AllowedOrigins: allowedOrigins,

		FederationIssuerDomain: getEnv("AUTH_ISSUER_DOMAIN", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		AllGrievancesOfficialOnly: getEnvBool("ALL_GRIEVANCES_OFFICIAL_ONLY", true),
		ResolvePolicy:             parseResolvePolicy(getEnv("RESOLVE_POLICY", string(ResolveAny))),
	}
}

func parseResolvePolicy(s string) ResolvePolicy {
	switch ResolvePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case ResolveOfficial:
		return ResolveOfficial
	case ResolveOwnerOrOfficial:
		return ResolveOwnerOrOfficial
	default:
		return ResolveAny
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
