package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/himanishpuri/SwingScan/pkg/logger"
	"github.com/himanishpuri/SwingScan/pkg/swingscan"
)

var version = "dev"

var (
	port           int
	dbPath         string
	allowedOrigins string
)

func init() {
	flag.IntVar(&port, "port", 8080, "HTTP server port")
	flag.StringVar(&dbPath, "db", getEnvOrDefault("SWINGSCAN_DB_PATH", "swingscan.sqlite3"), "Path to the SQLite recording database")
	flag.StringVar(&allowedOrigins, "origins", "*", "Comma-separated list of allowed CORS origins (use * for all)")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseOrigins(s string) []string {
	if s == "*" {
		return []string{"*"}
	}
	origins := strings.Split(s, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func main() {
	flag.Parse()

	// Requests name recordings, never files on the server.
	service, err := swingscan.NewService(
		swingscan.WithDBPath(dbPath),
		swingscan.WithFormat(swingscan.FormatSQLite),
	)
	if err != nil {
		logger.Fatalf("Failed to create service: %v", err)
	}
	defer service.Close()

	server := NewServer(service, &ServerConfig{
		Port:           port,
		DBPath:         dbPath,
		AllowedOrigins: parseOrigins(allowedOrigins),
	})
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}
}
