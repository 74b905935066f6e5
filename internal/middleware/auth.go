package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"backend/internal/authz"
	"backend/internal/repository"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only, never use in production
	}
	return []byte(secret)
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
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
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

// parseToken extracts and validates the JWT from cookie or Authorization header.
func parseToken(c *gin.Context) (jwt.MapClaims, bool) {
	tokenString, cookieErr := c.Cookie("access_token")
	if cookieErr != nil || tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return nil, false
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return nil, false
		}
		tokenString = parts[1]
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
		return nil, false
	}
	return claims, true
}

// RequireAuth validates the JWT and loads the identity triple (user,
// company, role) into the gin context. It does not check permissions.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c)
		if !ok {
			return
		}

		sub, _ := claims["sub"].(string)
		company, _ := claims["company"].(string)
		role, _ := claims["role"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Subject not found in token"))
			return
		}

		c.Set("userID", sub)
		c.Set("companyID", company)
		c.Set("roleID", role)
		c.Next()
	}
}

// RequirePermission validates the JWT and checks the role's grant map for
// every listed "module.action" code. Missing modules, missing actions, and
// explicit false all deny.
func RequirePermission(codes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parseToken(c)
		if !ok {
			return
		}

		sub, _ := claims["sub"].(string)
		company, _ := claims["company"].(string)
		roleID, _ := claims["role"].(string)
		if sub == "" || company == "" || roleID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Token lacks company membership context"))
			return
		}

		c.Set("userID", sub)
		c.Set("companyID", company)
		c.Set("roleID", roleID)

		grants, err := grantsForRole(c, roleID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to verify permissions"))
			return
		}

		for _, code := range codes {
			// Malformed codes evaluate to false, same as a missing grant.
			if !grants.HasCode(code) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: missing permission '"+code+"'"))
				return
			}
		}

		c.Next()
	}
}

// --- Grant cache ---

// grantCacheEntry stores a role's grant map with TTL
type grantCacheEntry struct {
	grants    authz.GrantMap
	expiresAt time.Time
}

var (
	grantCache    sync.Map // roleID -> grantCacheEntry
	grantCacheTTL = 5 * time.Minute
)

// grantRoleRepo holds the role store for grant lookups, set via InitGrantMiddleware
var grantRoleRepo repository.RoleRepository

// InitGrantMiddleware sets the role store used by RequirePermission
func InitGrantMiddleware(roleRepo repository.RoleRepository) {
	grantRoleRepo = roleRepo
}

// grantsForRole returns the cached or freshly loaded grant map for a role ID
func grantsForRole(c *gin.Context, roleID string) (authz.GrantMap, error) {
	if entry, ok := grantCache.Load(roleID); ok {
		cached := entry.(grantCacheEntry)
		if time.Now().Before(cached.expiresAt) {
			return cached.grants, nil
		}
	}

	if grantRoleRepo == nil {
		return nil, fmt.Errorf("grant middleware not initialized")
	}

	id, err := uuid.Parse(roleID)
	if err != nil {
		return nil, fmt.Errorf("invalid role id in token: %w", err)
	}
	role, err := grantRoleRepo.FindByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}

	grantCache.Store(roleID, grantCacheEntry{
		grants:    role.Grants,
		expiresAt: time.Now().Add(grantCacheTTL),
	})
	return role.Grants, nil
}

// GrantsForRole exposes grant map resolution for handlers (e.g., /me
// endpoint). Handlers get a copy so the cached map cannot be mutated.
func GrantsForRole(c *gin.Context, roleID string) (authz.GrantMap, error) {
	grants, err := grantsForRole(c, roleID)
	if err != nil {
		return nil, err
	}
	return grants.Clone(), nil
}

// ClearGrantCache removes the cached grant map for one role (or every role
// if roleID is empty). Call after any role grant mutation.
func ClearGrantCache(roleID string) {
	if roleID == "" {
		grantCache.Range(func(key, _ interface{}) bool {
			grantCache.Delete(key)
			return true
		})
	} else {
		grantCache.Delete(roleID)
	}
}
