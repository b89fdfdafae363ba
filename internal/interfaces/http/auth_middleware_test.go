package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-ledger/internal/application/ledger"
	apphttp "github.com/jhoicas/Inventario-ledger/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/Inventario-ledger/pkg/jwt"
)

const authUser = "00000000-0000-0000-0000-000000000001"

func bearer(t *testing.T, role string, expMin int) string {
	t.Helper()
	tok, err := pkgjwt.Generate(testJWTSecret, authUser, role, testIssuer, expMin)
	require.NoError(t, err)
	return "Bearer " + tok
}

// whoami responde con lo que los middlewares dejaron en el contexto.
func whoami(roles ...string) *fiber.App {
	app := fiber.New()
	app.Get("/me", apphttp.AuthMiddleware(testJWTSecret), apphttp.RequireRole(roles...), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"user_id": apphttp.GetUserID(c),
			"role":    apphttp.GetRole(c),
			"actor":   ledger.ActorFrom(c.UserContext()),
		})
	})
	return app
}

func TestAuthMiddleware_Rechazos(t *testing.T) {
	cases := []struct {
		name   string
		header func(t *testing.T) string
		status int
		code   string
	}{
		{"esquema basic", func(*testing.T) string { return "Basic dXNlcjpwYXNz" }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"firma inválida", func(*testing.T) string { return "Bearer token.invalido.aqui" }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token vencido", func(t *testing.T) string { return bearer(t, apphttp.RoleAdmin, -5) }, http.StatusUnauthorized, "INVALID_TOKEN"},
		{"token sin rol", func(t *testing.T) string { return bearer(t, "", 60) }, http.StatusUnauthorized, "MISSING_ROLE"},
		{"bodeguero fuera de ruta de vendedor", func(t *testing.T) string { return bearer(t, apphttp.RoleBodeguero, 60) }, http.StatusForbidden, "FORBIDDEN"},
	}
	app := whoami(apphttp.RoleVendedor)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", tc.header(t))
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tc.status, resp.StatusCode)
			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tc.code, body["code"])
		})
	}
}

func TestAuthMiddleware_CargaUsuarioRolYActor(t *testing.T) {
	app := whoami(apphttp.RoleAdmin, apphttp.RoleBodeguero)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, apphttp.RoleBodeguero, 60))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, "bodeguero entra a una ruta de admin o bodeguero")
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, authUser, body["user_id"])
	assert.Equal(t, authUser, body["actor"], "el usuario del token queda como actor de los movimientos")
	assert.Equal(t, apphttp.RoleBodeguero, body["role"])
}
