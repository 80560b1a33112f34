package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicportal/clinic-scheduler/internal/httperr"
	"github.com/clinicportal/clinic-scheduler/internal/identity"
)

const secret = "s3cret"

func sign(t *testing.T, claims Claims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return s
}

func claims(sub string, role identity.Role, exp time.Duration) Claims {
	return Claims{
		Role:      string(role),
		DoctorID:  "d1",
		PatientID: "p1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
		},
	}
}

func engine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", append(handlers, func(c *gin.Context) {
		id, _ := IdentityFrom(c)
		ctxID, err := identity.FromContext(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"user_id": id.UserID})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": id.UserID, "ctx_user_id": ctxID.UserID, "role": ctxID.Role})
	})...)
	return r
}

func get(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body httperr.HTTPError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func TestAuthMiddleware(t *testing.T) {
	r := engine(AuthMiddleware(secret))

	tests := []struct {
		name   string
		header string
		status int
		code   string
	}{
		{"missing", "", http.StatusUnauthorized, "missing_authorization_header"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, "invalid_authorization_header"},
		{"wrong key", "Bearer " + sign(t, claims("u1", identity.RoleDoctor, time.Hour), "other"), http.StatusUnauthorized, "invalid_token"},
		{"expired", "Bearer " + sign(t, claims("u1", identity.RoleDoctor, -time.Hour), secret), http.StatusUnauthorized, "invalid_token"},
		{"unknown role", "Bearer " + sign(t, claims("u1", "janitor", time.Hour), secret), http.StatusUnauthorized, "invalid_token_payload"},
		{"no subject", "Bearer " + sign(t, claims("", identity.RoleDoctor, time.Hour), secret), http.StatusUnauthorized, "invalid_token_payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.header)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errCode(t, w))
		})
	}
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	r := engine(AuthMiddleware(secret))

	w := get(r, "bearer "+sign(t, claims("u1", identity.RoleDoctor, time.Hour), secret))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "u1", body["user_id"])
	assert.Equal(t, "u1", body["ctx_user_id"])
	assert.Equal(t, "doctor", body["role"])
}

func TestRequireRoles(t *testing.T) {
	r := engine(AuthMiddleware(secret), RequireRoles(identity.RoleClinicalStaff, identity.RoleAdmin))

	w := get(r, "Bearer "+sign(t, claims("u1", identity.RoleAdmin, time.Hour), secret))
	assert.Equal(t, http.StatusOK, w.Code)

	w = get(r, "Bearer "+sign(t, claims("u2", identity.RolePatient, time.Hour), secret))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "forbidden", errCode(t, w))

	// without AuthMiddleware in front
	w = get(engine(RequireRoles(identity.RoleAdmin)), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "unauthenticated", errCode(t, w))
}
