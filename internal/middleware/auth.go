package middleware

import (
	"net/http"
	"os"
	"strings"

	"crm-backend/internal/authz"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys set for downstream handlers after authentication.
const (
	CtxUserID   = "userID"
	CtxUserRole = "userRole"
)

// Auth authenticates requests with JWTs and authorizes them against the
// role-permission matrix. One instance is shared by all route groups.
type Auth struct {
	secret []byte
	matrix *authz.Matrix
}

func NewAuth(secret []byte, matrix *authz.Matrix) *Auth {
	return &Auth{secret: secret, matrix: matrix}
}

// Secret exposes the signing key for collaborators that authenticate on
// their own (websocket upgrade).
func (a *Auth) Secret() []byte {
	return a.secret
}

// Matrix exposes the permission matrix for handler-level checks (the users
// self-service carve-out).
func (a *Auth) Matrix() *authz.Matrix {
	return a.matrix
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 7 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*7, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// extractToken pulls the JWT from the access_token cookie, falling back to
// the Authorization header.
func extractToken(c *gin.Context) (string, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// authenticate parses and validates the JWT, storing userID/userRole in the
// gin context. Returns false after aborting with 401 on failure.
func (a *Auth) authenticate(c *gin.Context) bool {
	tokenString, ok := extractToken(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return false
	}

	userRole, ok := claims["role"].(string)
	if !ok {
		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Role not found in token"))
		return false
	}

	c.Set(CtxUserID, claims["sub"])
	c.Set(CtxUserRole, userRole)
	return true
}

// RequireAuth validates the JWT without any permission check. Used for
// routes whose authorization depends on the record (e.g. own user record).
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}
		c.Next()
	}
}

// RequirePermission validates the JWT and checks the user's role against
// the matrix for the given module/action. Denials are 403s; the matrix
// never grants anything to an unknown role.
func (a *Auth) RequirePermission(module authz.Module, action authz.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}

		role := authz.Role(c.GetString(CtxUserRole))
		if !a.matrix.IsAllowed(role, module, action) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Permission denied"))
			return
		}

		c.Next()
	}
}

// RequireRole validates the JWT and checks that the user's role is one of
// allowedRoles exactly. Used for role-gated rather than grant-gated routes
// (super_admin-only user deletion).
func (a *Auth) RequireRole(allowedRoles ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			return
		}

		role := authz.Role(c.GetString(CtxUserRole))
		for _, allowed := range allowedRoles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Permission denied"))
	}
}
