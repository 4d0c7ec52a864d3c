package vault

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

// fakeVault is a minimal Vault server covering AppRole login and the token
// self endpoints.
type fakeVault struct {
	*httptest.Server

	renewable bool
	logins    atomic.Int32
	lookups   atomic.Int32
	renewals  atomic.Int32
	lastToken atomic.Value
	lastLogin atomic.Value
}

func newFakeVault(t *testing.T, renewable bool) *fakeVault {
	t.Helper()

	f := &fakeVault{renewable: renewable}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/auth/", func(w http.ResponseWriter, r *http.Request) {
		f.lastToken.Store(r.Header.Get("X-Vault-Token"))

		switch r.URL.Path {
		case "/v1/auth/token/lookup-self":
			f.lookups.Add(1)
			if r.Header.Get("X-Vault-Token") == "" {
				writeJSON(w, http.StatusForbidden, map[string]interface{}{
					"errors": []string{"permission denied"},
				})
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"data": map[string]interface{}{
					"renewable": f.renewable,
					"ttl":       3600,
				},
			})
		case "/v1/auth/token/renew-self":
			f.renewals.Add(1)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"auth": map[string]interface{}{
					"client_token":   r.Header.Get("X-Vault-Token"),
					"renewable":      f.renewable,
					"lease_duration": 3600,
				},
			})
		default:
			// auth/<mount>/login
			f.logins.Add(1)
			var body map[string]interface{}
			_ = json.NewDecoder(r.Body).Decode(&body)
			body["path"] = r.URL.Path
			f.lastLogin.Store(body)
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"auth": map[string]interface{}{
					"client_token":   "s.approle-token",
					"renewable":      f.renewable,
					"lease_duration": 3600,
				},
			})
		}
	})

	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Close)
	return f
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
