package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/clinicportal/clinic-scheduler/internal/httperr"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
)

const ContextIdentity = "identity"

// Claims is the identity token issued by the portal's auth service.
type Claims struct {
	Role      string `json:"role"`
	PatientID string `json:"patient_id,omitempty"`
	DoctorID  string `json:"doctor_id,omitempty"`
	jwt.RegisteredClaims
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			httperr.Unauthorized(c, "missing_authorization_header", "Authorization header is required.")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httperr.Unauthorized(c, "invalid_authorization_header", "Expected a bearer token.")
			return
		}

		var claims Claims
		token, err := jwt.ParseWithClaims(parts[1], &claims, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenMalformed
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			httperr.Unauthorized(c, "invalid_token", "Token is invalid or expired.")
			return
		}

		role, ok := identity.ParseRole(claims.Role)
		if !ok || claims.Subject == "" {
			httperr.Unauthorized(c, "invalid_token_payload", "Token is missing subject or role.")
			return
		}

		id := identity.Identity{
			UserID:    claims.Subject,
			Role:      role,
			PatientID: claims.PatientID,
			DoctorID:  claims.DoctorID,
		}
		c.Set(ContextIdentity, id)
		c.Request = c.Request.WithContext(identity.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

// RequireRoles rejects callers whose role is not listed.
func RequireRoles(roles ...identity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			httperr.Unauthorized(c, "unauthenticated", "Authentication required.")
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		httperr.Forbidden(c, "forbidden", "Role not allowed for this operation.")
	}
}

func IdentityFrom(c *gin.Context) (identity.Identity, bool) {
	v, ok := c.Get(ContextIdentity)
	if !ok {
		return identity.Identity{}, false
	}
	id, ok := v.(identity.Identity)
	return id, ok
}
