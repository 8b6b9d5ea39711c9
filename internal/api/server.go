// Package api exposes the finance wizard, listings, quotes and accounts over HTTP.
package api

import (
	"net/http"
	"strings"
	"time"

	"car-mzansi-connect/internal/auth"
	"car-mzansi-connect/internal/common/logger"
	"car-mzansi-connect/internal/marketplace/listings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type Deps struct {
	Store     *Store
	Catalogue listings.Catalogue
	// Auth may be nil, in which case the account routes are not registered.
	Auth       *auth.Provider
	AnnualRate decimal.Decimal
	Logger     logger.Logger
}

type Server struct {
	store      *Store
	catalogue  listings.Catalogue
	auth       *auth.Provider
	annualRate decimal.Decimal
	logger     logger.Logger
}

func NewServer(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Server{
		store:      d.Store,
		catalogue:  d.Catalogue,
		auth:       d.Auth,
		annualRate: d.AnnualRate,
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger(), bearerToken())
	s.RegisterRoutes(router)
	return router
}

func (s *Server) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")

	wizards := v1.Group("/wizards")
	{
		wizards.POST("", s.openWizard)
		wizards.GET("/:id", s.getWizard)
		wizards.DELETE("/:id", s.closeWizard)
		wizards.PUT("/:id/fields", s.updateFields)
		wizards.POST("/:id/advance", s.advance)
		wizards.POST("/:id/retreat", s.retreat)
		wizards.POST("/:id/auth", s.authSucceeded)
		wizards.PUT("/:id/consents", s.setConsent)
		wizards.POST("/:id/accept", s.accept)
		wizards.POST("/:id/decline", s.decline)
		wizards.POST("/:id/dismiss", s.dismiss)
	}

	v1.GET("/listings", s.searchListings)
	v1.GET("/listings/:id", s.getListing)
	v1.POST("/quotes", s.quote)

	if s.auth != nil {
		accounts := v1.Group("/auth")
		{
			accounts.POST("/signup", s.signUp)
			accounts.POST("/signin", s.signIn)
			accounts.POST("/signout", s.signOut)
			accounts.GET("/me", s.me)
			accounts.PATCH("/me", s.updateProfile)
		}
	}
}

// bearerToken copies the Authorization bearer token into the request context.
func bearerToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
			c.Request = c.Request.WithContext(auth.WithToken(c.Request.Context(), strings.TrimSpace(token)))
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		fields := map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Warn("request", fields)
			return
		}
		s.logger.Debug("request", fields)
	}
}
