package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dairydrop/internal/config"
	"github.com/dairydrop/internal/constants"
	"github.com/dairydrop/internal/http/response"
	"github.com/dairydrop/internal/repository"
	"github.com/dairydrop/internal/service"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"

// CORSMiddleware handles cross-origin requests.
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware stamps every request with an id, reusing the one
// the caller supplied when present.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware writes one structured line per request.
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.Unauthorized(c, "authorization header missing")
		c.Abort()
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		response.Unauthorized(c, "authorization header invalid")
		c.Abort()
		return "", false
	}
	return parts[1], true
}

// UserAuthMiddleware authenticates storefront customers. The account is
// re-read so disabled users lose access immediately.
func UserAuthMiddleware(authSvc *service.AuthService, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authSvc == nil || userRepo == nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			return
		}
		claims, err := authSvc.ParseJWT(token)
		if err != nil || claims.Role != constants.RoleUser || claims.SubjectID == 0 {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		user, err := userRepo.GetByID(claims.SubjectID)
		if err != nil || user == nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		if user.Status != constants.UserStatusActive {
			response.Unauthorized(c, "account disabled")
			c.Abort()
			return
		}
		c.Set("user_id", claims.SubjectID)
		c.Set("user_email", user.Email)
		c.Next()
	}
}

// AdminAuthMiddleware authenticates the single back-office account.
func AdminAuthMiddleware(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authSvc == nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			return
		}
		claims, err := authSvc.ParseJWT(token)
		if err != nil || claims.Role != constants.RoleAdmin {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		c.Set("admin_name", claims.Name)
		c.Next()
	}
}

// DeliveryAuthMiddleware authenticates delivery staff. Deactivated
// staff lose access on their next request.
func DeliveryAuthMiddleware(authSvc *service.AuthService, deliveryBoyRepo repository.DeliveryBoyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authSvc == nil || deliveryBoyRepo == nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			return
		}
		claims, err := authSvc.ParseJWT(token)
		if err != nil || claims.Role != constants.RoleDelivery || claims.SubjectID == 0 {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		boy, err := deliveryBoyRepo.GetByID(claims.SubjectID)
		if err != nil || boy == nil {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}
		if !boy.IsActive {
			response.Unauthorized(c, "account disabled")
			c.Abort()
			return
		}
		c.Set("delivery_boy_id", claims.SubjectID)
		c.Next()
	}
}
