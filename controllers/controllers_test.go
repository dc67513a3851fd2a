package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"servicehub-backend/config"
	"servicehub-backend/models"
	"servicehub-backend/routes"
	"servicehub-backend/utils"
)

var setupOnce sync.Once

// setup connects to the test database and builds the router. Skipped
// entirely when TEST_DB_URL is not set.
func setup(t *testing.T) *gin.Engine {
	t.Helper()
	_ = godotenv.Load("../.env")

	dbURL := os.Getenv("TEST_DB_URL")
	if dbURL == "" {
		t.Skip("TEST_DB_URL not set")
	}
	if os.Getenv("JWT_SECRET") == "" {
		os.Setenv("JWT_SECRET", "controllers-test-secret")
	}

	setupOnce.Do(func() {
		gin.SetMode(gin.TestMode)
		os.Setenv("DB_URL", dbURL)
		config.ConnectDB()
		config.DB.AutoMigrate(
			&models.User{},
			&models.Rating{},
			&models.Service{},
			&models.Review{},
			&models.Appointment{},
			&models.ReminderLog{},
		)
	})

	return routes.SetupRouter()
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

// registerUser creates an account with a random email and returns its token
// and user id (recovered from the token claims).
func registerUser(t *testing.T, r *gin.Engine, role string) (token, userID string) {
	t.Helper()
	email := fmt.Sprintf("test-%s@test.com", uuid.NewString()[:8])
	w := doJSON(t, r, http.MethodPost, "/api/users/register", "", gin.H{
		"name":     "Test User",
		"email":    email,
		"password": "testpass123",
		"role":     role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", role, w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	decode(t, w, &resp)
	if resp.Role != role {
		t.Fatalf("register returned role %q, want %q", resp.Role, role)
	}
	id, _, err := utils.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	return resp.Token, id
}

func createService(t *testing.T, r *gin.Engine, providerToken, title string) models.Service {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/services/service", providerToken, gin.H{
		"title":       title,
		"description": "test description",
		"price":       50.0,
		"category":    "repairs",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create service: status %d body %s", w.Code, w.Body.String())
	}
	var svc models.Service
	decode(t, w, &svc)
	return svc
}

// ----- auth -----

func TestRegisterAndLogin(t *testing.T) {
	r := setup(t)

	email := fmt.Sprintf("test-%s@test.com", uuid.NewString()[:8])
	register := gin.H{
		"name": "Login User", "email": email,
		"password": "testpass123", "role": "client",
	}

	if w := doJSON(t, r, http.MethodPost, "/api/users/register", "", register); w.Code != http.StatusCreated {
		t.Fatalf("register: %d %s", w.Code, w.Body.String())
	}
	if w := doJSON(t, r, http.MethodPost, "/api/users/register", "", register); w.Code != http.StatusConflict {
		t.Errorf("duplicate register: %d, want 409", w.Code)
	}

	w := doJSON(t, r, http.MethodPost, "/api/users/login", "", gin.H{
		"email": email, "password": "testpass123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: %d %s", w.Code, w.Body.String())
	}
	var resp struct {
		Token string `json:"token"`
		Role  string `json:"role"`
	}
	decode(t, w, &resp)
	if resp.Token == "" || resp.Role != "client" {
		t.Errorf("login response = %+v", resp)
	}

	w = doJSON(t, r, http.MethodPost, "/api/users/login", "", gin.H{
		"email": email, "password": "wrongpass",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("wrong password: %d, want 400", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	r := setup(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"email": "a@b.com", "password": "testpass123", "role": "client"}},
		{"bad email", gin.H{"name": "X", "email": "not-an-email", "password": "testpass123", "role": "client"}},
		{"short password", gin.H{"name": "X", "email": "a@b.com", "password": "abc", "role": "client"}},
		{"unknown role", gin.H{"name": "X", "email": "a@b.com", "password": "testpass123", "role": "admin"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := doJSON(t, r, http.MethodPost, "/api/users/register", "", tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status %d, want 400", w.Code)
			}
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := setup(t)

	if w := doJSON(t, r, http.MethodGet, "/api/users/profile", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: %d, want 401", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/api/services", "garbage-token", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: %d, want 401", w.Code)
	}
}

// ----- services -----

func TestServiceOwnership(t *testing.T) {
	r := setup(t)

	providerToken, _ := registerUser(t, r, "provider")
	otherProviderToken, _ := registerUser(t, r, "provider")
	clientToken, _ := registerUser(t, r, "client")

	svc := createService(t, r, providerToken, "Pipe fixing")

	// only providers may create listings
	w := doJSON(t, r, http.MethodPost, "/api/services/service", clientToken, gin.H{
		"title": "Nope", "description": "d", "price": 1.0, "category": "x",
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("client create service: %d, want 403", w.Code)
	}

	// another provider cannot touch the listing
	w = doJSON(t, r, http.MethodPut, "/api/services/"+svc.ID.String(), otherProviderToken, gin.H{"price": 99.0})
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign update: %d, want 404", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/services/"+svc.ID.String(), otherProviderToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("foreign delete: %d, want 404", w.Code)
	}

	// zero is a valid price; an absent or negative one is not
	w = doJSON(t, r, http.MethodPost, "/api/services/service", providerToken, gin.H{
		"title": "Free checkup", "description": "d", "price": 0.0, "category": "repairs",
	})
	if w.Code != http.StatusCreated {
		t.Errorf("zero price create: %d %s, want 201", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, "/api/services/service", providerToken, gin.H{
		"title": "No price", "description": "d", "category": "repairs",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing price: %d, want 400", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, "/api/services/service", providerToken, gin.H{
		"title": "Negative", "description": "d", "price": -1.0, "category": "repairs",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative price: %d, want 400", w.Code)
	}

	// the owner can
	w = doJSON(t, r, http.MethodPut, "/api/services/"+svc.ID.String(), providerToken, gin.H{"price": 75.0, "available": false})
	if w.Code != http.StatusOK {
		t.Fatalf("owner update: %d %s", w.Code, w.Body.String())
	}
	var updated models.Service
	decode(t, w, &updated)
	if updated.Price != 75.0 || updated.Available {
		t.Errorf("update not applied: %+v", updated)
	}
}

// ----- appointments -----

func TestAppointmentLifecycle(t *testing.T) {
	r := setup(t)

	providerToken, _ := registerUser(t, r, "provider")
	clientToken, clientID := registerUser(t, r, "client")
	strangerToken, _ := registerUser(t, r, "client")

	svc := createService(t, r, providerToken, "Garden work")
	date := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Second)

	// booking an unknown service fails and persists nothing
	w := doJSON(t, r, http.MethodPost, "/api/appointments", clientToken, gin.H{
		"serviceId": uuid.NewString(), "date": date, "notes": "urgent",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown service: %d, want 404", w.Code)
	}

	// date is required
	w = doJSON(t, r, http.MethodPost, "/api/appointments", clientToken, gin.H{
		"serviceId": svc.ID.String(), "notes": "urgent",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing date: %d, want 400", w.Code)
	}

	// providers cannot book
	w = doJSON(t, r, http.MethodPost, "/api/appointments", providerToken, gin.H{
		"serviceId": svc.ID.String(), "date": date,
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("provider booking: %d, want 403", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/api/appointments", clientToken, gin.H{
		"serviceId": svc.ID.String(), "date": date, "notes": "urgent",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create appointment: %d %s", w.Code, w.Body.String())
	}
	var appt models.Appointment
	decode(t, w, &appt)
	if appt.Status != models.StatusPending {
		t.Errorf("status = %q, want pending", appt.Status)
	}
	if appt.ClientID.String() != clientID {
		t.Errorf("clientId = %s, want %s", appt.ClientID, clientID)
	}

	// pending listing is visible to both sides, not to strangers
	for _, tc := range []struct {
		name    string
		token   string
		visible bool
	}{
		{"client", clientToken, true},
		{"provider", providerToken, true},
		{"stranger", strangerToken, false},
	} {
		w = doJSON(t, r, http.MethodGet, "/api/appointments/pending", tc.token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("pending (%s): %d %s", tc.name, w.Code, w.Body.String())
		}
		if got := listContainsAppointment(t, w, appt.ID); got != tc.visible {
			t.Errorf("pending visibility for %s = %v, want %v", tc.name, got, tc.visible)
		}
	}

	// only the owning provider confirms
	w = doJSON(t, r, http.MethodPatch, "/api/appointments/confirm/"+appt.ID.String(), clientToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("client confirm: %d, want 403", w.Code)
	}
	w = doJSON(t, r, http.MethodPatch, "/api/appointments/confirm/"+uuid.NewString(), providerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("confirm unknown: %d, want 404", w.Code)
	}
	w = doJSON(t, r, http.MethodPatch, "/api/appointments/confirm/"+appt.ID.String(), providerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("provider confirm: %d %s", w.Code, w.Body.String())
	}
	var confirmed models.Appointment
	decode(t, w, &confirmed)
	if confirmed.Status != models.StatusConfirmed {
		t.Errorf("status after confirm = %q", confirmed.Status)
	}

	// confirming twice is harmless for the provider, still forbidden for the client
	w = doJSON(t, r, http.MethodPatch, "/api/appointments/confirm/"+appt.ID.String(), clientToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("client re-confirm: %d, want 403", w.Code)
	}
	w = doJSON(t, r, http.MethodPatch, "/api/appointments/confirm/"+appt.ID.String(), providerToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("provider re-confirm: %d, want 200", w.Code)
	}

	for _, tc := range []struct {
		name    string
		token   string
		visible bool
	}{
		{"provider", providerToken, true},
		{"client", clientToken, true},
		{"stranger", strangerToken, false},
	} {
		w = doJSON(t, r, http.MethodGet, "/api/appointments/confirmed", tc.token, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("confirmed (%s): %d %s", tc.name, w.Code, w.Body.String())
		}
		if got := listContainsAppointment(t, w, appt.ID); got != tc.visible {
			t.Errorf("confirmed visibility for %s = %v, want %v", tc.name, got, tc.visible)
		}
	}

	// /all lists the client's bookings, 404 for clients with none
	w = doJSON(t, r, http.MethodGet, "/api/appointments/all", clientToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("client all: %d %s", w.Code, w.Body.String())
	}
	if !listContainsAppointment(t, w, appt.ID) {
		t.Error("client /all missing the booking")
	}
	w = doJSON(t, r, http.MethodGet, "/api/appointments/all", strangerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("stranger /all: %d, want 404", w.Code)
	}

}

func TestAppointmentUpdateDelete(t *testing.T) {
	r := setup(t)

	providerToken, _ := registerUser(t, r, "provider")
	clientToken, _ := registerUser(t, r, "client")
	strangerToken, _ := registerUser(t, r, "client")

	svc := createService(t, r, providerToken, "Painting")
	date := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	w := doJSON(t, r, http.MethodPost, "/api/appointments", clientToken, gin.H{
		"serviceId": svc.ID.String(), "date": date,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var appt models.Appointment
	decode(t, w, &appt)

	// unrelated users cannot touch the booking
	w = doJSON(t, r, http.MethodPut, "/api/appointments/"+appt.ID.String(), strangerToken, gin.H{"notes": "hijack"})
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger update: %d, want 403", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, "/api/appointments/"+appt.ID.String(), strangerToken, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("stranger delete: %d, want 403", w.Code)
	}

	// the client may edit, but only to a declared status
	w = doJSON(t, r, http.MethodPut, "/api/appointments/"+appt.ID.String(), clientToken, gin.H{"status": "done"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid status: %d, want 400", w.Code)
	}
	w = doJSON(t, r, http.MethodPut, "/api/appointments/"+appt.ID.String(), clientToken, gin.H{"notes": "bring ladder", "status": "cancelled"})
	if w.Code != http.StatusOK {
		t.Fatalf("client update: %d %s", w.Code, w.Body.String())
	}
	var updated models.Appointment
	decode(t, w, &updated)
	if updated.Notes != "bring ladder" || updated.Status != models.StatusCancelled {
		t.Errorf("update not applied: %+v", updated)
	}

	// the owning provider may delete
	w = doJSON(t, r, http.MethodDelete, "/api/appointments/"+appt.ID.String(), providerToken, nil)
	if w.Code != http.StatusOK {
		t.Errorf("provider delete: %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodDelete, "/api/appointments/"+appt.ID.String(), providerToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete gone: %d, want 404", w.Code)
	}
}

func TestAppointmentListingSurvivesDeletedService(t *testing.T) {
	r := setup(t)

	providerToken, _ := registerUser(t, r, "provider")
	clientToken, _ := registerUser(t, r, "client")

	svc := createService(t, r, providerToken, "Roof inspection")
	date := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)

	w := doJSON(t, r, http.MethodPost, "/api/appointments", clientToken, gin.H{
		"serviceId": svc.ID.String(), "date": date,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", w.Code, w.Body.String())
	}
	var appt models.Appointment
	decode(t, w, &appt)

	if w = doJSON(t, r, http.MethodDelete, "/api/services/"+svc.ID.String(), providerToken, nil); w.Code != http.StatusOK {
		t.Fatalf("delete service: %d %s", w.Code, w.Body.String())
	}

	// the dangling booking still lists, with placeholder service and provider
	for _, path := range []string{"/api/appointments/pending", "/api/appointments/all"} {
		w = doJSON(t, r, http.MethodGet, path, clientToken, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("%s after service delete: %d %s", path, w.Code, w.Body.String())
		}
		var list []struct {
			ID      uuid.UUID `json:"id"`
			Service struct {
				Title string `json:"title"`
			} `json:"service"`
			Provider struct {
				Name string `json:"name"`
			} `json:"provider"`
			Client struct {
				Name string `json:"name"`
			} `json:"client"`
		}
		decode(t, w, &list)
		found := false
		for _, item := range list {
			if item.ID != appt.ID {
				continue
			}
			found = true
			if item.Service.Title != "Service unavailable" {
				t.Errorf("%s service title = %q, want placeholder", path, item.Service.Title)
			}
			if item.Provider.Name != "Provider unavailable" {
				t.Errorf("%s provider name = %q, want placeholder", path, item.Provider.Name)
			}
			if item.Client.Name != "Test User" {
				t.Errorf("%s client name = %q, want the real client", path, item.Client.Name)
			}
		}
		if !found {
			t.Errorf("%s missing the dangling booking", path)
		}
	}
}

func listContainsAppointment(t *testing.T, w *httptest.ResponseRecorder, id uuid.UUID) bool {
	t.Helper()
	var list []struct {
		ID uuid.UUID `json:"id"`
	}
	decode(t, w, &list)
	for _, item := range list {
		if item.ID == id {
			return true
		}
	}
	return false
}

// ----- ratings and reviews -----

func TestRateProvider(t *testing.T) {
	r := setup(t)

	providerToken, providerID := registerUser(t, r, "provider")
	clientAToken, _ := registerUser(t, r, "client")
	clientBToken, _ := registerUser(t, r, "client")

	rate := func(token string, value float64) *httptest.ResponseRecorder {
		return doJSON(t, r, http.MethodPost, "/api/users/"+providerID+"/rate", token, gin.H{"value": value})
	}
	average := func(w *httptest.ResponseRecorder) float64 {
		var resp struct {
			Rating float64 `json:"rating"`
		}
		decode(t, w, &resp)
		return resp.Rating
	}

	// providers cannot rate
	if w := rate(providerToken, 4); w.Code != http.StatusForbidden {
		t.Errorf("provider rating: %d, want 403", w.Code)
	}
	// out-of-range values rejected
	if w := rate(clientAToken, 6); w.Code != http.StatusBadRequest {
		t.Errorf("value 6: %d, want 400", w.Code)
	}
	// unknown provider
	if w := doJSON(t, r, http.MethodPost, "/api/users/"+uuid.NewString()+"/rate", clientAToken, gin.H{"value": 4}); w.Code != http.StatusNotFound {
		t.Errorf("unknown provider: %d, want 404", w.Code)
	}

	w := rate(clientAToken, 4)
	if w.Code != http.StatusOK {
		t.Fatalf("first rating: %d %s", w.Code, w.Body.String())
	}
	if got := average(w); got != 4 {
		t.Errorf("average after A=4: %v, want 4", got)
	}

	w = rate(clientBToken, 2)
	if w.Code != http.StatusOK {
		t.Fatalf("second rating: %d %s", w.Code, w.Body.String())
	}
	if got := average(w); got != 3 {
		t.Errorf("average after B=2: %v, want 3", got)
	}

	// re-rating replaces, not appends: (5+2)/2, not (4+2+5)/3
	w = rate(clientAToken, 5)
	if w.Code != http.StatusOK {
		t.Fatalf("re-rating: %d %s", w.Code, w.Body.String())
	}
	if got := average(w); got != 3.5 {
		t.Errorf("average after A re-rates 5: %v, want 3.5", got)
	}

	// the stored profile reflects the same average
	w = doJSON(t, r, http.MethodGet, "/api/users/profile/"+providerID, clientAToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("profile: %d %s", w.Code, w.Body.String())
	}
	var profile struct {
		Rating  float64 `json:"rating"`
		Ratings []struct {
			Value float64 `json:"value"`
		} `json:"ratings"`
	}
	decode(t, w, &profile)
	if profile.Rating != 3.5 {
		t.Errorf("stored rating = %v, want 3.5", profile.Rating)
	}
	if len(profile.Ratings) != 2 {
		t.Errorf("rating rows = %d, want 2 (one per rater)", len(profile.Ratings))
	}
}

func TestAddReview(t *testing.T) {
	r := setup(t)

	providerToken, _ := registerUser(t, r, "provider")
	clientToken, _ := registerUser(t, r, "client")

	svc := createService(t, r, providerToken, "Tiling")
	path := "/api/services/" + svc.ID.String() + "/reviews"

	// providers cannot review
	if w := doJSON(t, r, http.MethodPost, path, providerToken, gin.H{"comment": "nice", "rating": 5}); w.Code != http.StatusForbidden {
		t.Errorf("provider review: %d, want 403", w.Code)
	}

	if w := doJSON(t, r, http.MethodPost, path, clientToken, gin.H{"comment": "great", "rating": 5}); w.Code != http.StatusOK {
		t.Fatalf("first review: %d %s", w.Code, w.Body.String())
	}

	// a repeat review from the same client appends
	w := doJSON(t, r, http.MethodPost, path, clientToken, gin.H{"comment": "second visit", "rating": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("second review: %d %s", w.Code, w.Body.String())
	}
	var reviewed models.Service
	decode(t, w, &reviewed)
	if len(reviewed.Reviews) != 2 {
		t.Errorf("reviews = %d, want 2", len(reviewed.Reviews))
	}
	if reviewed.Rating != 4 {
		t.Errorf("service rating = %v, want 4", reviewed.Rating)
	}
}

// ----- provider discovery -----

func TestProviderTagSearch(t *testing.T) {
	r := setup(t)

	providerToken, providerID := registerUser(t, r, "provider")

	tag := "tagsearch-" + uuid.NewString()[:8]
	w := doJSON(t, r, http.MethodPut, "/api/users/profile", providerToken, gin.H{
		"description": "I fix things",
		"tags":        []string{tag, "repairs"},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update profile: %d %s", w.Code, w.Body.String())
	}

	// terms below the minimum length are rejected
	if w := doJSON(t, r, http.MethodGet, "/api/users/filter?tags=ab", providerToken, nil); w.Code != http.StatusBadRequest {
		t.Errorf("short term: %d, want 400", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/api/users/filter?tags="+tag[:12], providerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("filter: %d %s", w.Code, w.Body.String())
	}
	var matched []models.User
	decode(t, w, &matched)
	found := false
	for _, u := range matched {
		if u.ID.String() == providerID {
			found = true
		}
	}
	if !found {
		t.Error("substring tag search did not return the provider")
	}

	// exact-tag lookup through random-tags
	w = doJSON(t, r, http.MethodGet, "/api/users/random-tags?tag="+tag, providerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("random-tags: %d %s", w.Code, w.Body.String())
	}
	var byTag struct {
		Providers []models.User `json:"providers"`
	}
	decode(t, w, &byTag)
	if len(byTag.Providers) != 1 || byTag.Providers[0].ID.String() != providerID {
		t.Errorf("exact tag lookup = %d providers", len(byTag.Providers))
	}

	// plain random-tags returns at most 6
	w = doJSON(t, r, http.MethodGet, "/api/users/random-tags", providerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("random-tags: %d %s", w.Code, w.Body.String())
	}
	var tags struct {
		Tags []string `json:"tags"`
	}
	decode(t, w, &tags)
	if len(tags.Tags) > 6 {
		t.Errorf("random tags = %d, want at most 6", len(tags.Tags))
	}
}
