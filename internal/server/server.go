// Package server exposes the verification endpoints over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/payment-verifier/constants"
	"github.com/joseph-ayodele/payment-verifier/internal/common"
	"github.com/joseph-ayodele/payment-verifier/internal/discovery"
	"github.com/joseph-ayodele/payment-verifier/internal/entity"
	"github.com/joseph-ayodele/payment-verifier/internal/providers"
)

const requestIDHeader = "X-Request-ID"

// IdentifierDiscoverer finds a transaction identifier in an uploaded image.
type IdentifierDiscoverer interface {
	Discover(ctx context.Context, up discovery.Upload, mode discovery.Mode) (entity.Identifier, error)
}

// Deps are the services the HTTP layer dispatches to.
type Deps struct {
	Telebirr   providers.Verifier
	BOA        providers.Verifier
	CBE        providers.Verifier
	Discoverer IdentifierDiscoverer
}

// Server is the verification API.
type Server struct {
	deps   Deps
	router *gin.Engine
	logger *slog.Logger
}

// NewServer builds the router with request-id, access log and recovery middleware.
func NewServer(deps Deps, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.MaxMultipartMemory = constants.MaxUploadMB << 20

	s := &Server{deps: deps, router: router, logger: logger}

	router.Use(s.requestContext(), gin.CustomRecovery(s.recover))

	router.GET("/", s.handleRoot)
	router.POST("/verify_telebirr_payment", s.handleVerifyTelebirr)
	router.POST("/verify_telebirr_payment_from_image", s.handleVerifyTelebirrImage)
	router.POST("/verify_boa_payment", s.handleVerifyBOA)
	router.POST("/verify_boa_payment_from_image", s.handleVerifyBOAImage)
	router.POST("/verify_cbe_payment", s.handleVerifyCBE)
	router.POST("/verify_cbe_payment_from_image", s.handleVerifyCBEImage)

	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Header(requestIDHeader, rid)

		logger := s.logger.With("req_id", rid)
		ctx := common.WithRequestID(c.Request.Context(), rid)
		ctx = common.WithLogger(ctx, logger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		logger.Info("http.request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
	}
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.internalError(c, fmt.Errorf("panic: %v", recovered))
}

// internalError answers 500 with a result-shaped body.
func (s *Server) internalError(c *gin.Context, err error) {
	common.LoggerFromContext(c.Request.Context(), s.logger).Error("http.internal_error", "path", c.FullPath(), "error", err)
	debug := err.Error()
	c.AbortWithStatusJSON(http.StatusInternalServerError, entity.VerificationResult{
		Status:    constants.StatusFailed.String(),
		Message:   fmt.Sprintf("An internal server error occurred during verification: %v", err),
		DebugInfo: &debug,
	})
}
