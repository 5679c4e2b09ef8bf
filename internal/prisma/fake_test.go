package prisma

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// mintToken returns an HS256 JWT expiring at exp; a zero exp omits the claim.
func mintToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{Subject: "prisma-test"}
	if !exp.IsZero() {
		claims.ExpiresAt = jwt.NewNumericDate(exp)
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// fakeAPI is a scripted Prisma Cloud endpoint that counts calls.
type fakeAPI struct {
	server *httptest.Server

	mu            sync.Mutex
	logins        int
	refreshes     int
	loginStatus   int
	loginToken    string
	refreshStatus int
	refreshToken  string
	lastLogin     loginRequest
	authHeaders   map[string]string
	bodies        map[string][]byte
	queries       map[string]url.Values
	responses     map[string]string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	f := &fakeAPI{
		loginStatus:   http.StatusOK,
		refreshStatus: http.StatusOK,
		authHeaders:   make(map[string]string),
		bodies:        make(map[string][]byte),
		queries:       make(map[string]url.Values),
		responses:     make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.logins++
		_ = json.NewDecoder(r.Body).Decode(&f.lastLogin)
		if f.loginStatus != http.StatusOK {
			http.Error(w, `{"message":"invalid credentials"}`, f.loginStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{Token: f.loginToken})
	})
	mux.HandleFunc("/auth_token/extend", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.refreshes++
		f.authHeaders[r.URL.Path] = r.Header.Get(authHeader)
		if f.refreshStatus != http.StatusOK {
			http.Error(w, "expired", f.refreshStatus)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{Token: f.refreshToken})
	})
	for _, path := range []string{"/v2/alert", "/v2/policy", "/alert/policy"} {
		path := path
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.authHeaders[path] = r.Header.Get(authHeader)
			body, _ := io.ReadAll(r.Body)
			f.bodies[path] = body
			f.queries[path] = r.URL.Query()
			resp, ok := f.responses[path]
			if !ok {
				http.Error(w, "not scripted", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, resp)
		})
	}

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeAPI) client() *Client {
	return NewClient(f.server.URL, 5*time.Second, zerolog.Nop())
}

func (f *fakeAPI) counts() (logins, refreshes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logins, f.refreshes
}

func (f *fakeAPI) authFor(path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authHeaders[path]
}

func (f *fakeAPI) bodyFor(path string) []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[path]
}

func (f *fakeAPI) loginBody() loginRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastLogin
}

func (f *fakeAPI) queryFor(path string) url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queries[path]
}
