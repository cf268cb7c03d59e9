// Package labelpress is a label-driven blog backend built with Go, Echo, and
// templ. Authors publish posts, tag them with labels, and readers browse the
// published posts page by page, optionally narrowed to one label.
//
// Storage and queries live in package content; this package is the HTTP
// glue: pages, a JSON API, RSS, and a sitemap. Pages are rendered through the
// ViewFuncs struct so users can bring their own templ templates.
package labelpress

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/labelpress/content"
	"github.com/eringen/labelpress/logger"
	"github.com/eringen/labelpress/markdown"
	"github.com/eringen/labelpress/views"
)

// ViewFuncs holds the templ components the App renders. Nil fields fall back
// to the defaults in package views.
type ViewFuncs struct {
	Index       func(views.ListData) templ.Component
	Post        func(views.PostData) templ.Component
	Labels      func(views.LabelsData) templ.Component
	NotFound    func(views.Site) templ.Component
	ServerError func(views.Site) templ.Component
}

func (v *ViewFuncs) setDefaults() {
	if v.Index == nil {
		v.Index = views.Index
	}
	if v.Post == nil {
		v.Post = views.Post
	}
	if v.Labels == nil {
		v.Labels = views.Labels
	}
	if v.NotFound == nil {
		v.NotFound = views.NotFound
	}
	if v.ServerError == nil {
		v.ServerError = views.ServerError
	}
}

// App wires together the store, caches, handlers, middleware, and templates.
type App struct {
	Config   SiteConfig
	Echo     *echo.Echo
	Store    *content.Store
	Authors  *AuthorCache
	Views    ViewFuncs
	Logger   *slog.Logger
	Renderer content.Renderer

	// Author is the default author that API-created posts and labels belong to.
	Author *content.User

	writeLimiter *WriteLimiter
	customRoutes []func(*App)
	staticDir    string
	initialized  bool
}

// New creates an App with the given configuration and views.
func New(cfg SiteConfig, vf ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()
	vf.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     vf,
		Renderer:  markdown.Default,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Init opens the store, provisions the default author, and registers
// middleware and routes. Start calls it; tests call it directly and drive
// a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}

	if a.Logger == nil {
		level, err := logger.ParseLevel(a.Config.LogLevel)
		if err != nil {
			return fmt.Errorf("labelpress: %w", err)
		}
		a.Logger = logger.New(logger.Config{Environment: a.Config.Environment, Level: level})
	}

	if a.Store == nil {
		store, err := content.Open(a.Config.DatabasePath, content.Options{
			Timeout: a.Config.StorageTimeout,
			Logger:  a.Logger.With("component", "store"),
		})
		if err != nil {
			return fmt.Errorf("labelpress: init store: %w", err)
		}
		a.Store = store
	}

	author, err := a.Store.EnsureUser(ctx, content.NewUser{
		Email:    a.Config.AuthorEmail,
		Fullname: a.Config.AuthorName,
		Admin:    true,
	})
	if err != nil {
		return fmt.Errorf("labelpress: provision author: %w", err)
	}
	a.Author = author

	a.Authors = NewAuthorCache(a.Store, a.Config.AuthorCacheTTL)
	if a.Config.WriteLimit > 0 {
		a.writeLimiter = NewWriteLimiter(a.Config.WriteLimit, time.Minute)
	}

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	a.initialized = true
	return nil
}

// Start initializes the App and serves HTTP until the server is shut down.
func (a *App) Start() error {
	if err := a.Init(context.Background()); err != nil {
		return err
	}
	a.Logger.Info("listening", "addr", a.Config.Addr, "database", a.Config.DatabasePath)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones, and closes
// the store.
func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	return errors.Join(err, a.Close())
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Reader pages.
	e.GET("/", a.handleIndex)
	e.GET("/blogs", a.handleIndex)
	e.GET("/blogs/:id", a.handlePost)
	e.GET("/labels", a.handleLabels)
	e.GET("/:label/posts/:page", a.handleLabelIndex)

	// JSON API. Mutating routes share the per-IP write limit.
	w := a.limitWrites
	e.POST("/api/blogs", a.apiListPosts)
	e.POST("/api/edit", a.apiGetPost)
	e.POST("/api/editdone", a.apiUpdatePost, w)
	e.POST("/api/publish", a.apiPublish, w)
	e.POST("/api/remove", a.apiDeletePost, w)
	e.POST("/api/status", a.apiSetStatus, w)
	e.POST("/api/labels", a.apiListLabels)
	e.POST("/api/labels/attach", a.apiAttachLabel, w)
	e.POST("/api/labels/detach", a.apiDetachLabel, w)
	e.POST("/api/users/flags", a.apiSetUserFlags, w)
	e.POST("/label/add", a.apiCreateLabel, w)
	e.POST("/label/remove", a.apiDeleteLabel, w)
	e.POST("/remove", a.apiDeletePost, w)
}

// Close releases the store and stops background work.
func (a *App) Close() error {
	if a.writeLimiter != nil {
		a.writeLimiter.Stop()
	}
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func (a *App) site() views.Site {
	return views.Site{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.AuthorName,
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("labelpress: required environment variable %s is not set", key)
	}
	return v
}
