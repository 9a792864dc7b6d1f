package web

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctopbusca/ctop-busca/config"
	"github.com/ctopbusca/ctop-busca/database"
	"github.com/ctopbusca/ctop-busca/web/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, database.InitDB(filepath.Join(dir, "ctop-busca.db")))
	t.Cleanup(func() { _ = database.CloseDB() })

	cfg := config.Default()
	cfg.DatasetPath = filepath.Join(dir, "missing.xlsx")
	cfg.Storage.CSV.UsersPath = filepath.Join(dir, "usuarios.csv")
	cfg.Storage.CSV.AccessLogPath = filepath.Join(dir, "log_acessos.csv")
	require.NoError(t, cfg.Validate())

	services := service.NewServices(cfg, database.GetDB())
	_, err := services.Credentials.EnsureInitialized()
	require.NoError(t, err)
	return NewServer(cfg, services)
}

func TestRouter_LoginPageIsLocalized(t *testing.T) {
	engine, err := newTestServer(t).NewRouter()
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>Log in</title>")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "lang", Value: "pt-BR"})
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Entrar")
}

func TestRouter_PanelRequiresLogin(t *testing.T) {
	engine, err := newTestServer(t).NewRouter()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panel/", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/js/panel.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_MissingDatasetOnlyDisablesSearch(t *testing.T) {
	engine, err := newTestServer(t).NewRouter()
	require.NoError(t, err)

	login := httptest.NewRequest(http.MethodPost, "/login",
		strings.NewReader(`{"username":"`+config.AdminUsername+`","password":"`+config.DefaultAdminPassword+`"}`))
	login.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, login)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	search := httptest.NewRequest(http.MethodPost, "/panel/api/search", strings.NewReader(`{"city":"Recife"}`))
	search.Header.Set("Content-Type", "application/json")
	search.Header.Set("Accept-Language", "en-US")
	for _, c := range cookies {
		search.AddCookie(c)
	}
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, search)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "missing.xlsx")
}
