// Package config builds process configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr          string
	JWTSigningKey string
	JWTIssuer     string
}

// Database captures Postgres configuration.
type Database struct {
	URL string
}

// Redis captures the optional availability-cache backend. An empty URL
// disables caching entirely; the service must stay correct without it.
type Redis struct {
	URL          string
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka captures the optional audit event pipeline. Empty brokers disable it.
type Kafka struct {
	Brokers    []string
	AuditTopic string
}

// Registrar captures credentials and endpoints for the domain registrar.
type Registrar struct {
	BaseURL        string
	Login          string
	PrivateKeyPEM  string
	PrivateKeyPath string
	KeyLabel       string
	Timeout        time.Duration
}

// Hosting captures the hosting platform the domains are bound to.
type Hosting struct {
	BaseURL     string
	Token       string
	ProjectID   string
	ApexIP      string
	CNAMETarget string
	Timeout     time.Duration
}

// Config is the full process configuration.
type Config struct {
	Server    Server
	Database  Database
	Redis     Redis
	Kafka     Kafka
	Registrar Registrar
	Hosting   Hosting
}

// FromEnv builds a Config from environment variables, with development
// defaults for everything except external credentials.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: Server{
			Addr:          getenv("ZORGSITES_ADDR", ":8080"),
			JWTSigningKey: getenv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     getenv("JWT_ISSUER", "zorgsites"),
		},
		Database: Database{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("REDIS_URL"),
			DialTimeout:  getduration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getduration("REDIS_READ_TIMEOUT", 500*time.Millisecond),
			WriteTimeout: getduration("REDIS_WRITE_TIMEOUT", 500*time.Millisecond),
		},
		Kafka: Kafka{
			Brokers:    splitNonEmpty(os.Getenv("KAFKA_BROKERS")),
			AuditTopic: getenv("KAFKA_AUDIT_TOPIC", "zorgsites.domain-events"),
		},
		Registrar: Registrar{
			BaseURL:        getenv("REGISTRAR_BASE_URL", "https://api.registrar.example"),
			Login:          os.Getenv("REGISTRAR_LOGIN"),
			PrivateKeyPEM:  os.Getenv("REGISTRAR_PRIVATE_KEY"),
			PrivateKeyPath: os.Getenv("REGISTRAR_PRIVATE_KEY_PATH"),
			KeyLabel:       getenv("REGISTRAR_KEY_LABEL", "zorgsites-server"),
			Timeout:        getduration("REGISTRAR_TIMEOUT", 10*time.Second),
		},
		Hosting: Hosting{
			BaseURL:     getenv("HOSTING_BASE_URL", "https://api.vercel.com"),
			Token:       os.Getenv("HOSTING_TOKEN"),
			ProjectID:   os.Getenv("HOSTING_PROJECT_ID"),
			ApexIP:      getenv("HOSTING_APEX_IP", "76.76.21.21"),
			CNAMETarget: getenv("HOSTING_CNAME_TARGET", "cname.vercel-dns.com"),
			Timeout:     getduration("HOSTING_TIMEOUT", 10*time.Second),
		},
	}

	if cfg.Database.URL == "" {
		return cfg, fmt.Errorf("DATABASE_URL not set")
	}
	return cfg, nil
}

// RegistrarKey returns the private key PEM, reading it from disk when only a
// path was configured.
func (r Registrar) RegistrarKey() (string, error) {
	if r.PrivateKeyPEM != "" {
		return r.PrivateKeyPEM, nil
	}
	if r.PrivateKeyPath == "" {
		return "", fmt.Errorf("registrar private key not configured")
	}
	pem, err := os.ReadFile(r.PrivateKeyPath)
	if err != nil {
		return "", fmt.Errorf("read registrar private key: %w", err)
	}
	return string(pem), nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getduration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitNonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
