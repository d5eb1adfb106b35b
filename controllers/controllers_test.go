package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aromasens/logger"
	"aromasens/models"
	"aromasens/services"
	"aromasens/storage"
)

type scriptedProvider struct {
	textErr    error
	profileErr error
	profileID  int64
}

func (p *scriptedProvider) Name() string    { return "scripted" }
func (p *scriptedProvider) Model() string   { return "scripted-1" }
func (p *scriptedProvider) Available() bool { return true }

func (p *scriptedProvider) GenerateText(_ context.Context, req services.TextRequest) (string, error) {
	if p.textErr != nil {
		return "", p.textErr
	}
	return "respuesta del asistente", nil
}

func (p *scriptedProvider) GenerateProfile(_ context.Context, req services.ProfileRequest) (*models.PerfumeProfile, error) {
	if p.profileErr != nil {
		return nil, p.profileErr
	}
	return &models.PerfumeProfile{
		PsychologicalProfile: "Perfil de " + req.Preferences.Age + " años",
		RecommendedPerfumeID: p.profileID,
		RecommendationReason: "✨ Razón",
	}, nil
}

type testServer struct {
	*httptest.Server
	store storage.Store
}

func newTestServer(t *testing.T, p *scriptedProvider) *testServer {
	t.Helper()
	log := logger.NewNop()
	store := storage.NewMemStore()
	if _, err := storage.Seed(context.Background(), store); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	index := services.NewCatalogIndex(log, nil)
	if _, err := index.Build(context.Background(), store); err != nil {
		t.Fatalf("Build: %v", err)
	}

	ai := services.NewAIService(log, map[models.ProviderID]services.Provider{models.ProviderPrimary: p}, models.ProviderPrimary)
	c := NewController(Deps{
		Log:             log,
		AI:              ai,
		Engine:          services.NewConversationEngine(log, ai),
		Recommender:     services.NewRecommender(log, store, ai, index, nil),
		Store:           store,
		DefaultLanguage: models.LanguageES,
		StorageDriver:   "memory",
	})
	srv := httptest.NewServer(c.Routes())
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, store: store}
}

func (s *testServer) post(t *testing.T, path string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var raw []byte
	switch b := body.(type) {
	case string:
		raw = []byte(b)
	default:
		var err error
		if raw, err = json.Marshal(b); err != nil {
			t.Fatalf("marshal: %v", err)
		}
	}
	resp, err := http.Post(s.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func (s *testServer) get(t *testing.T, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	return resp, readBody(t, resp)
}

func readBody(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	defer resp.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	return buf.Bytes()
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	return v
}

func TestFullConversation(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{profileID: 2})

	resp, body := srv.post(t, "/api/chat/start", map[string]string{"gender": models.GenderFeminine})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start status=%d body=%s", resp.StatusCode, body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatalf("missing request id header")
	}
	start := decode[models.ChatResponse](t, body)
	if start.Step == nil || *start.Step != 0 {
		t.Fatalf("start=%+v", start)
	}

	answers := []string{"28", "Uso perfumes a diario", "Uso diario", "Florales"}
	sheet := models.UserResponses{Gender: models.GenderFeminine}
	step := *start.Step
	var history []models.ChatMessage
	for _, answer := range answers {
		resp, body := srv.post(t, "/api/chat/message", map[string]interface{}{
			"message":     answer,
			"gender":      models.GenderFeminine,
			"currentStep": step,
			"history":     history,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("message status=%d body=%s", resp.StatusCode, body)
		}
		reply := decode[models.ChatResponse](t, body)
		if reply.IsComplete || reply.Step == nil || *reply.Step != step+1 {
			t.Fatalf("after step %d: %+v", step, reply)
		}
		sheet.Record(models.ConversationStep(step), answer)
		history = append(history,
			models.ChatMessage{Role: models.RoleUser, Content: answer},
			models.ChatMessage{Role: models.RoleAssistant, Content: reply.Message},
		)
		step = *reply.Step
	}

	resp, body = srv.post(t, "/api/chat/message", map[string]interface{}{
		"message": "gracias", "gender": models.GenderFeminine, "currentStep": step,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("final message status=%d", resp.StatusCode)
	}
	final := decode[models.ChatResponse](t, body)
	if !final.IsComplete || *final.Step != 4 {
		t.Fatalf("final=%+v", final)
	}

	resp, body = srv.post(t, "/api/chat/recommendation", map[string]interface{}{
		"gender":      sheet.Gender,
		"age":         sheet.Age,
		"experience":  sheet.Experience,
		"occasion":    sheet.Occasion,
		"preferences": sheet.Preferences,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recommendation status=%d body=%s", resp.StatusCode, body)
	}
	rec := decode[models.ChatResponse](t, body)
	if !rec.IsComplete || rec.SessionID != "1" || rec.Recommendation == nil || rec.Recommendation.PerfumeID != 2 {
		t.Fatalf("recommendation=%s", body)
	}
	if rec.Profile != "Perfil de 28 años" {
		t.Fatalf("profile=%q", rec.Profile)
	}

	resp, body = srv.get(t, "/api/sessions/1")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("session status=%d", resp.StatusCode)
	}
	detail := decode[models.SessionDetail](t, body)
	if detail.Session.Preferences.Occasion != "Uso diario" || len(detail.Recommendations) != 1 {
		t.Fatalf("detail=%+v", detail)
	}
}

func TestStepAliasIsAccepted(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})
	resp, body := srv.post(t, "/api/chat/message", map[string]interface{}{
		"message": "Uso diario", "gender": models.GenderMasculine, "step": 2,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	reply := decode[models.ChatResponse](t, body)
	if *reply.Step != 3 || len(reply.QuickResponses) != 5 {
		t.Fatalf("reply=%+v", reply)
	}
}

func TestBadRequests(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})
	cases := []struct {
		name string
		path string
		body interface{}
	}{
		{"malformed json", "/api/chat/start", `{"gender":`},
		{"unknown gender", "/api/chat/start", map[string]string{"gender": "otro"}},
		{"missing step", "/api/chat/message", map[string]string{"message": "hola", "gender": models.GenderFeminine}},
		{"step out of range", "/api/chat/message", map[string]interface{}{"message": "hola", "gender": models.GenderFeminine, "currentStep": 7}},
		{"empty message", "/api/chat/message", map[string]interface{}{"message": "", "gender": models.GenderFeminine, "currentStep": 1}},
		{"incomplete preferences", "/api/chat/recommendation", map[string]string{"gender": models.GenderFeminine, "age": "30"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := srv.post(t, tc.path, tc.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("status=%d body=%s", resp.StatusCode, body)
			}
			e := decode[models.ErrorResponse](t, body)
			if e.Status != models.StatusError || e.Message == "" {
				t.Fatalf("error body=%+v", e)
			}
		})
	}
}

func TestRecommendationFailureIsServerError(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{profileErr: errors.New("all backends down")})
	resp, body := srv.post(t, "/api/chat/recommendation", map[string]string{
		"gender": models.GenderMasculine, "age": "40", "experience": "mucha", "occasion": "trabajo", "preferences": "amaderadas",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	e := decode[models.ErrorResponse](t, body)
	if e.Message != "Failed to generate recommendation" || strings.Contains(string(body), "all backends down") {
		t.Fatalf("error body=%s", body)
	}
}

func TestChatDegradesWhenProviderFails(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{textErr: errors.New("timeout")})
	resp, body := srv.post(t, "/api/chat/start", map[string]string{"gender": models.GenderMasculine, "language": "en"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d body=%s", resp.StatusCode, body)
	}
	if reply := decode[models.ChatResponse](t, body); !strings.Contains(reply.Message, "How old are you?") {
		t.Fatalf("reply=%+v", reply)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})

	resp, body := srv.get(t, "/api/perfumes?gender=masculino")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status=%d", resp.StatusCode)
	}
	if perfumes := decode[[]models.Perfume](t, body); len(perfumes) != 3 || perfumes[0].ID != 4 {
		t.Fatalf("perfumes=%+v", perfumes)
	}

	_, body = srv.get(t, "/api/perfumes?gender=unisex")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Fatalf("unknown gender body=%s", body)
	}

	resp, body = srv.get(t, "/api/perfumes/6")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status=%d", resp.StatusCode)
	}
	if p := decode[models.Perfume](t, body); p.Name != "Aqua Vitae" {
		t.Fatalf("perfume=%+v", p)
	}

	for _, path := range []string{"/api/perfumes/99", "/api/sessions/1"} {
		if resp, _ := srv.get(t, path); resp.StatusCode != http.StatusNotFound {
			t.Fatalf("GET %s status=%d", path, resp.StatusCode)
		}
	}
	if resp, _ := srv.get(t, "/api/perfumes/0"); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("zero id status=%d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &scriptedProvider{})
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("X-Request-ID") != "req-123" {
		t.Fatalf("status=%d request id=%q", resp.StatusCode, resp.Header.Get("X-Request-ID"))
	}
	health := decode[models.HealthResponse](t, body)
	if health.Status != "healthy" || health.Storage != "memory" || health.Providers["default"] != "primary" {
		t.Fatalf("health=%+v", health)
	}
}
