// Package server exposes the application over HTTP.
package server

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"docchat/internal/port"
	"docchat/internal/usecase"
)

// ownerHeader carries the opaque user identity. An empty or absent header
// means the legacy unscoped namespace.
const ownerHeader = "X-User-ID"

const ownerKey = "owner"

type Server struct {
	e         *echo.Echo
	ingestor  *usecase.Ingestor
	chatter   *usecase.Chatter
	docs      port.DocumentStore
	chats     *usecase.TranscriptStore
	maxUpload int64
}

func New(ingestor *usecase.Ingestor, chatter *usecase.Chatter, docs port.DocumentStore, chats *usecase.TranscriptStore, maxUpload int64) *Server {
	s := &Server{
		e:         echo.New(),
		ingestor:  ingestor,
		chatter:   chatter,
		docs:      docs,
		chats:     chats,
		maxUpload: maxUpload,
	}
	s.e.HideBanner = true
	s.e.Use(echomw.Recover())
	s.e.Use(identity)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/health", s.handleHealth)
	s.e.POST("/api/upload", s.handleUpload)
	s.e.POST("/api/chat", s.handleChat)
	s.e.GET("/api/documents", s.handleListDocuments)
	s.e.DELETE("/api/documents/:id", s.handleDeleteDocument)
	s.e.GET("/api/chats", s.handleListChats)
	s.e.POST("/api/chats", s.handleSaveChat)
	s.e.GET("/api/chats/:id", s.handleGetChat)
	s.e.DELETE("/api/chats/:id", s.handleDeleteChat)
}

// identity reads the opaque owner from the request header and stores it on
// the context for handlers and scoping.
func identity(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Set(ownerKey, c.Request().Header.Get(ownerHeader))
		return next(c)
	}
}

func owner(c echo.Context) string {
	if v, ok := c.Get(ownerKey).(string); ok {
		return v
	}
	return ""
}

// Handler exposes the routing tree, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
