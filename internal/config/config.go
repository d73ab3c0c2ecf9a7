package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation defaults (a scene can override any of them per session)
	WorldWidth        float64
	WorldHeight       float64
	GravityX          float64
	GravityY          float64
	CellSize          float64
	BounceStiffness   float64
	ResolveIterations int
	CorrectionA       float64
	CorrectionB       float64
	MinY              float64
	TickRate          int
	MaxBalls          int
	MaxSessions       int
	SessionTTLMin     int
	SnapshotEverySec  int

	// Security
	JWTSecret string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/ballpit?sslmode=disable"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation defaults
		WorldWidth:        getEnvFloat("WORLD_WIDTH", 800),
		WorldHeight:       getEnvFloat("WORLD_HEIGHT", 600),
		GravityX:          getEnvFloat("GRAVITY_X", 0),
		GravityY:          getEnvFloat("GRAVITY_Y", 1000),
		CellSize:          getEnvFloat("CELL_SIZE", 50),
		BounceStiffness:   getEnvFloat("BOUNCE_STIFFNESS", 0.9),
		ResolveIterations: getEnvInt("RESOLVE_ITERATIONS", 5),
		CorrectionA:       getEnvFloat("CORRECTION_A", 0.5),
		CorrectionB:       getEnvFloat("CORRECTION_B", 0.5),
		MinY:              getEnvFloat("MIN_Y", 0),
		TickRate:          getEnvInt("TICK_RATE", 60),
		MaxBalls:          getEnvInt("MAX_BALLS", 500),
		MaxSessions:       getEnvInt("MAX_SESSIONS", 50),
		SessionTTLMin:     getEnvInt("SESSION_TTL_MINUTES", 30),
		SnapshotEverySec:  getEnvInt("SNAPSHOT_EVERY_SECONDS", 5),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
