package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Store drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
	DriverNeo4j  = "neo4j"
)

// Config holds all configuration for the application. It is built once by
// Load and handed to the constructors that need it.
type Config struct {
	AppMode            string
	Port               string
	AllowedOrigins     string
	DriftCheckSchedule string
	RateLimitPerMinute int
	AuthRateLimit      int
	Entity             EntityStoreConfig
	Graph              GraphStoreConfig
	JWT                JWTConfig
}

// EntityStoreConfig holds the document store settings
type EntityStoreConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
	MongoURI   string
	MongoDB    string
}

// GraphStoreConfig holds the relationship store settings
type GraphStoreConfig struct {
	Driver     string
	SQLitePath string
	Neo4jURI   string
	Neo4jUser  string
	Neo4jPass  string
	Neo4jDB    string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret          string
	AccessTokenMins int
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:            appMode,
		Port:               getEnv("PORT", "3000"),
		AllowedOrigins:     getEnv("ALLOWED_ORIGINS", ""),
		DriftCheckSchedule: getEnv("DRIFT_CHECK_SCHEDULE", "@every 1h"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		AuthRateLimit:      getEnvInt("AUTH_RATE_LIMIT_PER_MINUTE", 5),
		Entity:             loadEntityStoreConfig(appMode),
		Graph:              loadGraphStoreConfig(appMode),
		JWT:                loadJWTConfig(appMode),
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s, entity: %s, graph: %s]",
		appMode, config.Entity.Driver, config.Graph.Driver)
	return config, nil
}

func (c *Config) validate() error {
	switch c.Entity.Driver {
	case DriverSQLite, DriverMySQL, DriverMongo:
	default:
		return fmt.Errorf("invalid ENTITY_STORE_DRIVER: '%s' (must be sqlite, mysql or mongo)", c.Entity.Driver)
	}
	switch c.Graph.Driver {
	case DriverSQLite, DriverNeo4j:
	default:
		return fmt.Errorf("invalid GRAPH_STORE_DRIVER: '%s' (must be sqlite or neo4j)", c.Graph.Driver)
	}
	if c.IsProd() && c.JWT.Secret == defaultSecret {
		return fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}
	return nil
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadEntityStoreConfig loads entity store config based on mode
func loadEntityStoreConfig(mode string) EntityStoreConfig {
	prefix := modePrefix(mode)

	return EntityStoreConfig{
		Driver:     strings.TrimSpace(getEnv("ENTITY_STORE_DRIVER", DriverSQLite)),
		Host:       getEnv(prefix+"DB_HOST", "localhost"),
		Port:       getEnv(prefix+"DB_PORT", "3306"),
		User:       getEnv(prefix+"DB_USER", "root"),
		Password:   getEnv(prefix+"DB_PASS", ""),
		DBName:     getEnv(prefix+"DB_NAME", "campus_rms"),
		SQLitePath: getEnv(prefix+"SQLITE_PATH", "campus-rms.db"),
		MongoURI:   getEnv(prefix+"MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getEnv(prefix+"MONGO_DB", "campus_rms"),
	}
}

// loadGraphStoreConfig loads relationship store config based on mode
func loadGraphStoreConfig(mode string) GraphStoreConfig {
	prefix := modePrefix(mode)

	return GraphStoreConfig{
		Driver:     strings.TrimSpace(getEnv("GRAPH_STORE_DRIVER", DriverSQLite)),
		SQLitePath: getEnv(prefix+"GRAPH_SQLITE_PATH", "campus-rms-graph.db"),
		Neo4jURI:   getEnv(prefix+"NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:  getEnv(prefix+"NEO4J_USER", "neo4j"),
		Neo4jPass:  getEnv(prefix+"NEO4J_PASS", ""),
		Neo4jDB:    getEnv(prefix+"NEO4J_DB", "neo4j"),
	}
}

const defaultSecret = "default_secret"

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, err := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "60"))
	if err != nil || accessMins < 1 {
		accessMins = 60
	}

	return JWTConfig{
		Secret:          getEnv(prefix+"JWT_SECRET", defaultSecret),
		AccessTokenMins: accessMins,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v < 1 {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	if c.AllowedOrigins == "" {
		if c.IsDev() {
			return "*"
		}
		return "http://localhost:3000"
	}
	return c.AllowedOrigins
}
