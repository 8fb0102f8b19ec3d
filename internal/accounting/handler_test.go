package accounting

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type echoMounter struct {
	name   string
	routes []string
}

func (m echoMounter) MountRoutes(r chi.Router) {
	for _, route := range m.routes {
		r.Get(route, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(m.name))
		})
	}
}

func TestHandlerMountsSubRouters(t *testing.T) {
	h := NewHandler(
		echoMounter{name: "accounts", routes: []string{"/", "/{id}"}},
		echoMounter{name: "journals", routes: []string{"/{id}"}},
		echoMounter{name: "balances", routes: []string{"/status"}},
		echoMounter{name: "reports", routes: []string{"/trial-balance"}},
		echoMounter{name: "aging", routes: []string{"/aging/ar"}},
	)
	router := chi.NewRouter()
	router.Route("/accounting", h.MountRoutes)

	cases := map[string]string{
		"/accounting/accounts/":             "accounts",
		"/accounting/accounts/7":            "accounts",
		"/accounting/journals/12":           "journals",
		"/accounting/balances/status":       "balances",
		"/accounting/reports/trial-balance": "reports",
		"/accounting/reports/aging/ar":      "aging",
	}
	for path, want := range cases {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code, path)
		require.Equal(t, want, rec.Body.String(), path)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounting/unknown", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
