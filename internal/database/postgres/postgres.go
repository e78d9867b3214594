package postgres

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"water-service/internal/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var dbStatus atomic.Bool

// DBStatus reports whether the last connection attempt succeeded.
func DBStatus() bool {
	return dbStatus.Load()
}

func dsn(cfg config.PostgresConfig, dbname string) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, dbname, sslMode)
}

// ConnectAndCreateDB creates the target database when it is missing, runs
// schema.sql against a fresh database and returns a pinged connection.
func ConnectAndCreateDB(cfg config.PostgresConfig) (*sqlx.DB, error) {
	log.Printf("Connecting to PostgreSQL with: host=%s, port=%s, user=%s, dbname=%s",
		cfg.Host, cfg.Port, cfg.Username, cfg.DBname)

	defaultDB, err := sql.Open("postgres", dsn(cfg, "postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to default postgres db: %w", err)
	}
	defer defaultDB.Close()

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)`
	if err := defaultDB.QueryRow(checkQuery, cfg.DBname).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check if database exists: %w", err)
	}

	if !exists {
		createQuery := fmt.Sprintf(`CREATE DATABASE "%s"`, cfg.DBname)
		if _, err := defaultDB.Exec(createQuery); err != nil {
			return nil, fmt.Errorf("failed to create database %s: %w", cfg.DBname, err)
		}
		log.Printf("Database '%s' created successfully", cfg.DBname)
	}

	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}

	if !exists {
		if _, err := ExecuteSchema(db, ""); err != nil {
			log.Printf("Warning: Failed to execute schema.sql: %v", err)
		}
	}

	dbStatus.Store(true)
	return db, nil
}

// Connect opens the configured database without creating it.
func Connect(cfg config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn(cfg, cfg.DBname))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping target database: %w", err)
	}
	return db, nil
}

var schemaLocations = []string{
	"schema.sql",
	"../schema.sql",
	"../../schema.sql",
	"/app/schema.sql",
}

func findSchema(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("schema file %s: %w", path, err)
		}
		return path, nil
	}

	candidates := append([]string{}, schemaLocations...)
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "schema.sql"))
	}
	for _, location := range candidates {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", fmt.Errorf("schema.sql not found in any expected locations: %v", candidates)
}

// SplitStatements breaks a SQL script on semicolons, dropping blanks and
// comment-only chunks.
func SplitStatements(script string) []string {
	var statements []string
	for _, statement := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(statement, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		if cleaned := strings.TrimSpace(strings.Join(lines, "\n")); cleaned != "" {
			statements = append(statements, cleaned)
		}
	}
	return statements
}

// ExecuteSchema runs every statement of the schema file, continuing past
// failures, and returns how many statements succeeded.
func ExecuteSchema(db *sqlx.DB, path string) (int, error) {
	schemaPath, err := findSchema(path)
	if err != nil {
		return 0, err
	}

	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return 0, fmt.Errorf("failed to read schema from %s: %w", schemaPath, err)
	}

	log.Printf("Executing schema from: %s", schemaPath)
	return ExecuteStatements(db, SplitStatements(string(content))), nil
}

func ExecuteStatements(db *sqlx.DB, statements []string) int {
	successCount := 0
	for i, statement := range statements {
		if _, err := db.Exec(statement); err != nil {
			log.Printf("Warning: Failed to execute statement %d: %v", i+1, err)
			log.Printf("Statement: %s", statement[:min(100, len(statement))])
			continue
		}
		successCount++
	}

	log.Printf("Schema execution completed. Successfully executed %d of %d statements", successCount, len(statements))
	return successCount
}

// RetryConnectOnFailed keeps reconnecting until the database answers.
func RetryConnectOnFailed(waitAmount time.Duration, db **sqlx.DB, cfg config.PostgresConfig) {
	for {
		if *db != nil {
			if err := (*db).Ping(); err == nil {
				log.Printf("database connection is healthy, no retry needed")
				return
			}
		}

		newDB, err := ConnectAndCreateDB(cfg)
		if err == nil {
			*db = newDB
			log.Printf("database retry connection successfully")
			return
		}
		log.Printf("failed to retry connect database: %s, next retry in %v", err, waitAmount)
		time.Sleep(waitAmount)
	}
}
