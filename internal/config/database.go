package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"campus-rms/internal/adapters/persistence/models"
	"campus-rms/internal/adapters/persistence/mongostore"
	"campus-rms/internal/adapters/persistence/neo4jgraph"
	"campus-rms/internal/adapters/persistence/repositories"
	"campus-rms/internal/adapters/persistence/sqlgraph"
	"campus-rms/internal/core/graph"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"
)

// ConnectEntityStore opens the configured document store and migrates it
func ConnectEntityStore(ctx context.Context, cfg *Config) (repositories.Store, error) {
	if cfg.Entity.Driver == DriverMongo {
		return mongostore.Open(ctx, cfg.Entity.MongoURI, cfg.Entity.MongoDB)
	}

	db, err := ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate entity store: %w", err)
	}
	return repositories.NewStore(db), nil
}

// ConnectGraphStore opens the configured relationship store
func ConnectGraphStore(ctx context.Context, cfg *Config) (graph.Store, error) {
	if cfg.Graph.Driver == DriverNeo4j {
		return neo4jgraph.Open(ctx, cfg.Graph.Neo4jURI, cfg.Graph.Neo4jUser, cfg.Graph.Neo4jPass, cfg.Graph.Neo4jDB)
	}

	store, err := sqlgraph.Open(ctx, cfg.Graph.SQLitePath)
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Graph store ready [sqlite: %s]", cfg.Graph.SQLitePath)
	return store, nil
}

// ConnectDatabase establishes a gorm connection to MySQL or SQLite
func ConnectDatabase(cfg *Config) (*gorm.DB, error) {
	// Configure GORM logger based on mode
	var gormLogger logger.Interface
	if cfg.IsDev() {
		gormLogger = logger.Default.LogMode(logger.Info)
	} else {
		gormLogger = logger.Default.LogMode(logger.Error)
	}

	var dialector gorm.Dialector
	switch cfg.Entity.Driver {
	case DriverMySQL:
		dialector = mysql.Open(buildDSN(cfg.Entity))
	case DriverSQLite:
		dialector = sqlite.Dialector{DriverName: "sqlite", DSN: SQLiteDSN(cfg.Entity.SQLitePath)}
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", cfg.Entity.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if cfg.Entity.Driver == DriverSQLite {
		// one writer; transactions must not wait on each other's connections
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.Entity.Driver == DriverMySQL {
		log.Printf("✅ Database connected successfully [%s:%s/%s]",
			cfg.Entity.Host,
			cfg.Entity.Port,
			cfg.Entity.DBName,
		)
	} else {
		log.Printf("✅ Database connected successfully [sqlite: %s]", cfg.Entity.SQLitePath)
	}

	return db, nil
}

// SQLiteDSN adds the pragmas every SQLite connection needs
func SQLiteDSN(path string) string {
	return path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// buildDSN returns the MySQL connection string. clientFoundRows makes
// RowsAffected count matched rows, which conditional updates rely on.
func buildDSN(d EntityStoreConfig) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC&clientFoundRows=true",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
	)
}
