package main

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/gabekutner/roommatefinder-backend/models"
	"github.com/gabekutner/roommatefinder-backend/pkg/realtime"
	"github.com/gabekutner/roommatefinder-backend/store"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	jwtSecret = []byte("integration-test-secret")
	_ = os.Setenv("MEDIA_BASE", t.TempDir())
	initDB()

	registry := realtime.NewRegistry(zap.NewNop())
	handlers := realtime.NewHandlers(
		store.NewProfiles(db),
		store.NewConnections(db),
		store.NewMessages(db),
		store.NewMedia(mediaBaseDir()),
		registry,
		zap.NewNop(),
	)
	wsRoute := wsHandler(registry, realtime.NewRouter(handlers), zap.NewNop())

	r := gin.Default()
	setupRoutes(r, wsRoute)
	return r
}

// seedOTP plants a known code for the identifier so the test can complete
// the verify step without reading logs.
func seedOTP(t *testing.T, identifier, code string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	otp := models.OTP{Identifier: identifier, CodeHash: hash, ExpiresAt: time.Now().Add(otpTTL)}
	if err := db.Create(&otp).Error; err != nil {
		t.Fatalf("seed otp: %v", err)
	}
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	// 1. Sign up (issues an OTP and creates the bare profile)
	identifier := "fullflow@test.edu"
	signupBody, _ := json.Marshal(map[string]string{"identifier": identifier})
	resp := performRequest(r, http.MethodPost, "/api/v1/signup", bytes.NewBuffer(signupBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("signup failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 2. Verify with a seeded code
	seedOTP(t, identifier, "1234")
	verifyBody, _ := json.Marshal(map[string]string{"identifier": identifier, "code": "1234"})
	resp = performRequest(r, http.MethodPost, "/api/v1/verify-otp", bytes.NewBuffer(verifyBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("verify failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var verifyResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &verifyResp)
	token, _ := verifyResp["token"].(string)
	refresh, _ := verifyResp["refresh_token"].(string)
	if token == "" || refresh == "" {
		t.Fatalf("missing tokens in verify response: %+v", verifyResp)
	}

	// 3. Fill in the questionnaire
	profBody, _ := json.Marshal(map[string]any{
		"name":          "Full Flow",
		"sex":           "M",
		"dorm_building": "4",
		"major":         "Computer Engineering",
		"state":         "CA",
		"interests":     []string{"1", "2", "3"},
	})
	resp = performRequest(r, http.MethodPost, "/api/v1/profile", bytes.NewBuffer(profBody), token, "application/json")
	if resp.Code != 200 {
		t.Fatalf("update profile failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 4. The saved profile counts as a complete account
	resp = performRequest(r, http.MethodGet, "/api/v1/me", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("me failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var me models.Profile
	_ = json.Unmarshal(resp.Body.Bytes(), &me)
	if !me.HasAccount {
		t.Fatalf("expected has_account after questionnaire, got %+v", me)
	}

	// 5. Upload a photo (multipart)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("file", "room.jpg")
	_, _ = w.Write([]byte("not really a jpeg"))
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, "/api/v1/photos", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, "/api/v1/photos", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list photos failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 6. Ranked matches
	resp = performRequest(r, http.MethodGet, "/api/v1/matches", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("matches failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 7. Rotate the refresh token
	refreshBody, _ := json.Marshal(map[string]string{"refresh_token": refresh})
	resp = performRequest(r, http.MethodPost, "/api/v1/refresh", bytes.NewBuffer(refreshBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("refresh failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var refreshResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &refreshResp)
	rotated, _ := refreshResp["refresh_token"].(string)
	if rotated == "" || rotated == refresh {
		t.Fatalf("expected a rotated refresh token, got %+v", refreshResp)
	}

	// the old token is spent
	resp = performRequest(r, http.MethodPost, "/api/v1/refresh", bytes.NewBuffer(refreshBody), "", "application/json")
	if resp.Code != 401 {
		t.Fatalf("expected 401 for revoked refresh token, got %d", resp.Code)
	}

	// 8. Revoke on logout
	revokeBody, _ := json.Marshal(map[string]string{"refresh_token": rotated})
	resp = performRequest(r, http.MethodPost, "/api/v1/revoke_refresh", bytes.NewBuffer(revokeBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("revoke failed status=%d body=%s", resp.Code, resp.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	r := setupTestServer(t)

	for _, path := range []string{"/api/v1/me", "/api/v1/profile", "/api/v1/matches"} {
		resp := performRequest(r, http.MethodGet, path, nil, "", "")
		if resp.Code != 401 {
			t.Fatalf("expected 401 for %s without token, got %d", path, resp.Code)
		}
	}
	resp := performRequest(r, http.MethodGet, "/api/v1/me", nil, "not-a-jwt", "")
	if resp.Code != 401 {
		t.Fatalf("expected 401 for bogus token, got %d", resp.Code)
	}
}

func TestQuestionnaireValidation(t *testing.T) {
	r := setupTestServer(t)

	identifier := "validation@test.edu"
	signupBody, _ := json.Marshal(map[string]string{"identifier": identifier})
	resp := performRequest(r, http.MethodPost, "/api/v1/signup", bytes.NewBuffer(signupBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("signup failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	seedOTP(t, identifier, "4321")
	verifyBody, _ := json.Marshal(map[string]string{"identifier": identifier, "code": "4321"})
	resp = performRequest(r, http.MethodPost, "/api/v1/verify-otp", bytes.NewBuffer(verifyBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("verify failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var verifyResp map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &verifyResp)
	token, _ := verifyResp["token"].(string)

	bad := []map[string]any{
		{"name": "X", "sex": "Q", "dorm_building": "4"},                                                     // unknown sex code
		{"name": "X", "sex": "M", "dorm_building": "99"},                                                    // unknown dorm
		{"name": "X", "sex": "M", "dorm_building": "4", "interests": []string{"1", "2", "3", "4", "5", "6"}}, // too many interests
		{"name": "X", "sex": "M", "dorm_building": "4", "interests": []string{"999"}},                       // unknown interest
	}
	for i, body := range bad {
		b, _ := json.Marshal(body)
		resp = performRequest(r, http.MethodPost, "/api/v1/profile", bytes.NewBuffer(b), token, "application/json")
		if resp.Code != 400 {
			t.Fatalf("case %d: expected 400, got %d body=%s", i, resp.Code, resp.Body.String())
		}
	}
}

func TestWrongOTPRejected(t *testing.T) {
	r := setupTestServer(t)

	identifier := "wrongcode@test.edu"
	signupBody, _ := json.Marshal(map[string]string{"identifier": identifier})
	resp := performRequest(r, http.MethodPost, "/api/v1/signup", bytes.NewBuffer(signupBody), "", "application/json")
	if resp.Code != 200 {
		t.Fatalf("signup failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	seedOTP(t, identifier, "1111")
	verifyBody, _ := json.Marshal(map[string]string{"identifier": identifier, "code": "2222"})
	resp = performRequest(r, http.MethodPost, "/api/v1/verify-otp", bytes.NewBuffer(verifyBody), "", "application/json")
	if resp.Code != 401 {
		t.Fatalf("expected 401 for wrong code, got %d body=%s", resp.Code, resp.Body.String())
	}
}
