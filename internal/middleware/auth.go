package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-ehr-server/internal/config"
	"hospital-ehr-server/internal/models"
	"hospital-ehr-server/internal/utils"
)

const (
	claimsKey = "claims"
	partyKey  = "party"
)

// AuthMiddleware creates a middleware for JWT authentication.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			utils.InternalServerError(c, "Claims not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if claims.Role == allowed {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// PartyMiddleware resolves the {partyType}/{partyId} path segments to a
// directory record and verifies that the authenticated account is that party.
// Messaging handlers downstream read the resolved party from the context and
// never touch the raw path parameters. Runs after AuthMiddleware.
func PartyMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		partyType := c.Param("partyType")
		if !models.ValidPartyType(partyType) {
			utils.NotFound(c, "Unknown party type")
			c.Abort()
			return
		}

		partyID, err := strconv.ParseUint(c.Param("partyId"), 10, 32)
		if err != nil || partyID == 0 {
			utils.NotFound(c, "Invalid party id")
			c.Abort()
			return
		}

		ref := models.PartyRef{Type: models.PartyType(partyType), ID: uint(partyID)}
		party, err := models.ResolveParty(db, ref)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				utils.NotFound(c, "User not found")
			} else {
				utils.InternalServerError(c, "Database error resolving party: "+err.Error())
			}
			c.Abort()
			return
		}

		claims, ok := GetClaims(c)
		if !ok {
			utils.InternalServerError(c, "Claims not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		// Admins may act on behalf of any party; everyone else must be the
		// party named in the path.
		if claims.Role != models.RoleAdmin {
			if claims.PartyType == nil || claims.PartyID == nil ||
				*claims.PartyType != ref.Type || *claims.PartyID != ref.ID {
				utils.Forbidden(c, "You are not authorized to act as this party.")
				c.Abort()
				return
			}
		}

		c.Set(partyKey, party)
		c.Next()
	}
}

// GetClaims returns the validated JWT claims set by AuthMiddleware.
func GetClaims(c *gin.Context) (*utils.Claims, bool) {
	value, exists := c.Get(claimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*utils.Claims)
	return claims, ok
}

// GetParty returns the resolved party set by PartyMiddleware.
func GetParty(c *gin.Context) (*models.Party, bool) {
	value, exists := c.Get(partyKey)
	if !exists {
		return nil, false
	}
	party, ok := value.(*models.Party)
	return party, ok
}
