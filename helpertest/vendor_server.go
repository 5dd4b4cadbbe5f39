package helpertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/onsi/ginkgo/v2"
)

// Credentials accepted by the fake vendor
const (
	VendorUser     = "alice"
	VendorPassword = "secret"
)

// VendorServer is a fake session-oriented vendor API
type VendorServer struct {
	*httptest.Server

	mu       sync.Mutex
	nextID   int
	sessions map[string]bool
	logins   int
	logouts  int

	failLogins int
}

// NewVendorServer starts a fake vendor, it is closed after the test
func NewVendorServer() *VendorServer {
	v := &VendorServer{sessions: make(map[string]bool)}

	r := chi.NewRouter()
	r.Post("/sessions", v.login)
	r.Get("/sessions/{id}", v.ping)
	r.Post("/sessions/{id}/query", v.query)
	r.Delete("/sessions/{id}", v.logout)

	v.Server = httptest.NewServer(r)

	ginkgo.DeferCleanup(v.Close)

	return v
}

// FailLogins lets the next n login requests fail with 503
func (v *VendorServer) FailLogins(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.failLogins = n
}

// Logins returns the number of successful logins
func (v *VendorServer) Logins() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.logins
}

// Logouts returns the number of closed sessions
func (v *VendorServer) Logouts() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.logouts
}

// Kill invalidates a session on the vendor side without a logout
func (v *VendorServer) Kill(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()

	delete(v.sessions, id)
}

func (v *VendorServer) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tenant   string `json:"tenant"`
		User     string `json:"user"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.failLogins > 0 {
		v.failLogins--

		http.Error(w, "license server unavailable", http.StatusServiceUnavailable)

		return
	}

	if req.User != VendorUser || req.Password != VendorPassword {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)

		return
	}

	v.nextID++
	v.logins++

	id := fmt.Sprintf("%s-%d", req.Tenant, v.nextID)
	v.sessions[id] = true

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"sessionId": id})
}

func (v *VendorServer) alive(id string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.sessions[id]
}

func (v *VendorServer) ping(w http.ResponseWriter, r *http.Request) {
	if !v.alive(chi.URLParam(r, "id")) {
		http.Error(w, "unknown session", http.StatusNotFound)

		return
	}

	w.WriteHeader(http.StatusOK)
}

func (v *VendorServer) query(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if !v.alive(id) {
		http.Error(w, "unknown session", http.StatusNotFound)

		return
	}

	body, _ := io.ReadAll(r.Body)

	_, _ = fmt.Fprintf(w, "%s:%s", id, body)
}

func (v *VendorServer) logout(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.sessions[id] {
		http.Error(w, "unknown session", http.StatusNotFound)

		return
	}

	delete(v.sessions, id)
	v.logouts++

	w.WriteHeader(http.StatusNoContent)
}
