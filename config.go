package labelpress

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/eringen/labelpress/content"
)

// SiteConfig holds all configuration for a labelpress site.
type SiteConfig struct {
	Name        string // Site name (default "Blog")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/blog.db")

	PageSize       int           // Posts per page (default 10)
	StorageTimeout time.Duration // Per-operation storage deadline (default 5s)

	AuthorEmail string // Default author, provisioned at start (default "admin@example.com")
	AuthorName  string // (default "Admin")

	LogLevel    string // debug, info, warn, error (default "info")
	Environment string // "production" switches logs to JSON (default "development")

	WriteLimit     int           // API writes per client IP per minute (default 60, <0 disables)
	AuthorCacheTTL time.Duration // Author lookup cache TTL (default 5min)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/blog.db"
	}
	if c.PageSize <= 0 {
		c.PageSize = 10
	}
	if c.StorageTimeout <= 0 {
		c.StorageTimeout = content.DefaultTimeout
	}
	if c.AuthorEmail == "" {
		c.AuthorEmail = "admin@example.com"
	}
	if c.AuthorName == "" {
		c.AuthorName = "Admin"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.WriteLimit == 0 {
		c.WriteLimit = 60
	}
	if c.AuthorCacheTTL == 0 {
		c.AuthorCacheTTL = 5 * time.Minute
	}
}

// LoadConfig reads a SiteConfig from the environment. Unset variables keep
// their defaults; malformed numbers and durations are errors.
func LoadConfig() (SiteConfig, error) {
	cfg := SiteConfig{
		Name:         os.Getenv("SITE_NAME"),
		URL:          os.Getenv("SITE_URL"),
		Description:  os.Getenv("SITE_DESCRIPTION"),
		Addr:         os.Getenv("ADDR"),
		DatabasePath: os.Getenv("DATABASE_PATH"),
		AuthorEmail:  os.Getenv("AUTHOR_EMAIL"),
		AuthorName:   os.Getenv("AUTHOR_NAME"),
		LogLevel:     os.Getenv("LOG_LEVEL"),
		Environment:  os.Getenv("ENV"),
	}

	var err error
	if cfg.PageSize, err = envInt("PER_PAGE_NUM"); err != nil {
		return cfg, err
	}
	if cfg.WriteLimit, err = envInt("WRITE_LIMIT"); err != nil {
		return cfg, err
	}
	if cfg.StorageTimeout, err = envDuration("STORAGE_TIMEOUT"); err != nil {
		return cfg, err
	}
	if cfg.AuthorCacheTTL, err = envDuration("AUTHOR_CACHE_TTL"); err != nil {
		return cfg, err
	}

	cfg.setDefaults()
	return cfg, nil
}

func envInt(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("labelpress: %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("labelpress: %s: %w", key, err)
	}
	return d, nil
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback receives the App before the server starts.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithLogger replaces the logger built from LogLevel and Environment.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithRenderer sets the collaborator that turns post content into HTML.
func WithRenderer(r content.Renderer) Option {
	return func(a *App) {
		a.Renderer = r
	}
}

// WithStore uses an already opened store instead of opening DatabasePath.
// The App takes ownership and closes it in Close.
func WithStore(s *content.Store) Option {
	return func(a *App) {
		a.Store = s
	}
}
