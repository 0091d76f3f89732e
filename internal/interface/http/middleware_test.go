package http

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

	"github.com/collab-hub/collab-portal/config"
	"github.com/collab-hub/collab-portal/internal/domain/actor"
	"github.com/collab-hub/collab-portal/internal/domain/shared"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var authCfg = config.AuthConfig{SigningKey: "test-signing-key", Issuer: "collab-portal"}

func signToken(t *testing.T, subject, name, role, issuer, key string) string {
	t.Helper()
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return signed
}

func authRouter() *gin.Engine {
	r := gin.New()
	r.GET("/whoami", Auth(authCfg), func(c *gin.Context) {
		a, ok := currentActor(c)
		if !ok {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		respondOK(c, gin.H{"id": a.ID, "role": string(a.Role)})
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	token := signToken(t, "stu-1", "Aruzhan S.", "Student", authCfg.Issuer, authCfg.SigningKey)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "stu-1", data["id"])
	assert.Equal(t, string(actor.RoleStudent), data["role"])
}

func TestAuth_NormalizesOfficialRoles(t *testing.T) {
	token := signToken(t, "prof-1", "Dr. Bekova", "Academia Official", authCfg.Issuer, authCfg.SigningKey)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	authRouter().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, string(actor.RoleAcademia), data["role"])
}

func TestAuth_Rejections(t *testing.T) {
	cases := map[string]struct {
		header string
		want   int
	}{
		"missing header": {header: "", want: http.StatusUnauthorized},
		"not bearer":     {header: "Basic abc", want: http.StatusUnauthorized},
		"garbage token":  {header: "Bearer not.a.jwt", want: http.StatusUnauthorized},
		"wrong key": {
			header: "Bearer " + signToken(t, "stu-1", "A", "student", authCfg.Issuer, "other-key"),
			want:   http.StatusUnauthorized,
		},
		"wrong issuer": {
			header: "Bearer " + signToken(t, "stu-1", "A", "student", "someone-else", authCfg.SigningKey),
			want:   http.StatusUnauthorized,
		},
		"unknown role": {
			header: "Bearer " + signToken(t, "adm-1", "A", "admin", authCfg.Issuer, authCfg.SigningKey),
			want:   http.StatusForbidden,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			authRouter().ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := map[string]struct {
		err  error
		want int
	}{
		"not found":  {err: shared.ErrApplicationNotFound, want: http.StatusNotFound},
		"forbidden":  {err: shared.ErrNotPoster, want: http.StatusForbidden},
		"conflict":   {err: shared.ErrDuplicateApplication, want: http.StatusConflict},
		"bad input":  {err: shared.ErrInvalidStatus, want: http.StatusBadRequest},
		"unexpected": {err: assert.AnError, want: http.StatusInternalServerError},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", func(c *gin.Context) { respondError(c, tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.want, w.Code)

			var resp Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Message)
		})
	}
}

func TestRespondError_NeverLeaksInternals(t *testing.T) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respondError(c, assert.AnError) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "internal error", resp.Message)
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://portal.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://portal.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://portal.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_UnlistedOriginGetsNoHeader(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"https://portal.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
