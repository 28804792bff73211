package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/civigo/grievance-backend/internal/auth"
	"github.com/civigo/grievance-backend/internal/config"
	"github.com/civigo/grievance-backend/internal/handlers"
	"github.com/civigo/grievance-backend/internal/models"
	"github.com/civigo/grievance-backend/internal/repository"
	"github.com/civigo/grievance-backend/internal/routes"
	"github.com/civigo/grievance-backend/internal/services"
)

var testSecret = []byte("handler-test-secret")

type memGrievanceRepo struct {
	records map[string]*models.Grievance
}

func (m *memGrievanceRepo) Insert(ctx context.Context, g *models.Grievance) (*models.Grievance, error) {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	stored := *g
	m.records[g.ID.Hex()] = &stored
	return g, nil
}

func (m *memGrievanceRepo) FindByID(ctx context.Context, id string) (*models.Grievance, error) {
	g, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (m *memGrievanceRepo) FindByUser(ctx context.Context, userID string) ([]models.Grievance, error) {
	out := []models.Grievance{}
	for _, g := range m.records {
		if g.UserID == userID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return out, nil
}

func (m *memGrievanceRepo) FindAll(ctx context.Context) ([]models.Grievance, error) {
	out := []models.Grievance{}
	for _, g := range m.records {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedOn.After(out[j].CreatedOn) })
	return out, nil
}

func (m *memGrievanceRepo) PushChat(ctx context.Context, id string, entry models.ChatEntry) (*models.Grievance, error) {
	g, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g.Chats = append(g.Chats, entry)
	out := *g
	return &out, nil
}

func (m *memGrievanceRepo) SetResolved(ctx context.Context, id string, at time.Time) (*models.Grievance, error) {
	g, ok := m.records[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	g.Status = models.StatusResolved
	g.ResolvedOn = &at
	out := *g
	return &out, nil
}

type memUserRepo struct {
	users map[string]*models.User
}

func (m *memUserRepo) Create(ctx context.Context, u *models.User) error {
	if _, exists := m.users[u.Email]; exists {
		return repository.ErrDuplicateEmail
	}
	stored := *u
	m.users[u.Email] = &stored
	return nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *u
	return &out, nil
}

// failingEnricher always errors so submissions exercise the fallback.
type failingEnricher struct{}

func (failingEnricher) Classify(ctx context.Context, description, subject string) (models.AIAnalysis, error) {
	return models.AIAnalysis{}, errors.New("provider down")
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	userRepo := &memUserRepo{users: map[string]*models.User{}}
	grievanceRepo := &memGrievanceRepo{records: map[string]*models.Grievance{}}

	userService := services.NewUserService(userRepo, testSecret)
	grievanceService := services.NewGrievanceService(grievanceRepo, failingEnricher{}, config.ResolveAny)
	h := handlers.NewHandler(userService, grievanceService)

	r := chi.NewRouter()
	routes.SetupRoutes(r, h, routes.Options{
		Verifier:                  auth.NewVerifier(testSecret, nil),
		AllGrievancesOfficialOnly: true,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body interface{}) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp, out.Bytes()
}

func signupAndLogin(t *testing.T, srv *httptest.Server, name, email, role string) (string, string) {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret123", "role": role,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]string{
		"email": email, "password": "secret123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))

	var authResp handlers.AuthResponse
	require.NoError(t, json.Unmarshal(body, &authResp))
	require.NotEmpty(t, authResp.Token)
	return authResp.Token, authResp.User.ID
}

func validGrievanceBody() map[string]string {
	return map[string]string{
		"name":        "Alice",
		"wardno":      "10",
		"phoneno":     "1234567890",
		"arealimit":   "Zone A",
		"subject":     "Overflowing Garbage Bin",
		"department":  "Sanitation",
		"address":     "123 Main St, Downtown",
		"description": "The garbage bin at the corner of Main St has been overflowing for 3 days.",
	}
}

func TestGrievanceLifecycleEndToEnd(t *testing.T) {
	srv := newTestServer(t)

	token, aliceID := signupAndLogin(t, srv, "Alice", "alice@x.com", "")

	// Submit; enricher is down, so aiAnalysis must be the fixed
	// fallback, and the client-supplied owner fields are discarded.
	payload := validGrievanceBody()
	payload["userId"] = "spoofed-owner"
	payload["createdBy"] = "Mallory"
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/addinfo", token, payload)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	var created models.Grievance
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, aliceID, created.UserID)
	assert.Equal(t, "Alice", created.CreatedBy)
	assert.Equal(t, models.StatusInProgress, created.Status)
	assert.Nil(t, created.ResolvedOn)
	require.NotNil(t, created.AIAnalysis)
	assert.Equal(t, services.FallbackAnalysis(), *created.AIAnalysis)

	// The grievance shows up in the owner's list.
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/user-grievances", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Grievance
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	// Resolve.
	resp, body = doJSON(t, http.MethodPatch, srv.URL+"/updatestatus", token, map[string]string{"id": created.ID.Hex()})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var resolved models.Grievance
	require.NoError(t, json.Unmarshal(body, &resolved))
	assert.Equal(t, models.StatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedOn)

	// Chat append.
	resp, body = doJSON(t, http.MethodPost, srv.URL+"/addchat", token, map[string]interface{}{
		"id":   created.ID.Hex(),
		"chat": map[string]string{"sender": "Official", "message": "Noted"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var updated models.Grievance
	require.NoError(t, json.Unmarshal(body, &updated))
	require.Len(t, updated.Chats, 1)
	assert.Equal(t, "Official", updated.Chats[0].Sender)
	assert.Equal(t, "Noted", updated.Chats[0].Message)
	assert.NotNil(t, updated.Chats[0].Timestamp)
}

func TestSubmitValidationListsEveryField(t *testing.T) {
	srv := newTestServer(t)
	token, _ := signupAndLogin(t, srv, "Alice", "alice@x.com", "")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/addinfo", token, map[string]string{"phoneno": "123"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp struct {
		Fields []string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(body, &errResp))
	assert.ElementsMatch(t,
		[]string{"name", "wardno", "phoneno", "subject", "department", "address", "description"},
		errResp.Fields)
}

func TestMissingTokenUnauthenticated(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/user-grievances", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBadTokenForbidden(t *testing.T) {
	srv := newTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/user-grievances", "garbage.token.here", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAllGrievancesOfficialOnly(t *testing.T) {
	srv := newTestServer(t)

	citizenToken, _ := signupAndLogin(t, srv, "Alice", "alice@x.com", "")
	officialToken, _ := signupAndLogin(t, srv, "Inspector", "inspector@city.gov", "official")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/all-grievances", citizenToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/all-grievances", officialToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []models.Grievance
	require.NoError(t, json.Unmarshal(body, &list))
}

func TestDuplicateSignupConflict(t *testing.T) {
	srv := newTestServer(t)

	signupAndLogin(t, srv, "Alice", "alice@x.com", "")
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/signup", "", map[string]string{
		"name": "Alice Again", "email": "alice@x.com", "password": "secret456",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestResolveUnknownIDNotFound(t *testing.T) {
	srv := newTestServer(t)
	token, _ := signupAndLogin(t, srv, "Alice", "alice@x.com", "")

	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/updatestatus", token, map[string]string{
		"id": "000000000000000000000000",
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoginBadCredentials(t *testing.T) {
	srv := newTestServer(t)
	signupAndLogin(t, srv, "Alice", "alice@x.com", "")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/login", "", map[string]string{
		"email": "alice@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
