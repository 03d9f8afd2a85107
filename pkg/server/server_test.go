package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/tietlabs/thapargpt/pkg/config"
	"github.com/tietlabs/thapargpt/pkg/history"
	"github.com/tietlabs/thapargpt/pkg/media"
)

// stubAsker returns a canned answer and records what it was asked.
type stubAsker struct {
	lastQuery string
	lastMedia []media.Attachment
	answer    string
	err       error
}

func (s *stubAsker) Ask(ctx context.Context, query string, attachments []media.Attachment) (string, error) {
	s.lastQuery = query
	s.lastMedia = attachments
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           8080,
		AllowedOrigins: "*",
		AdminUsername:  "admin",
		AdminPassword:  "123",
	}
}

func newTestServer(t *testing.T, asker *stubAsker) (*Server, *history.Store) {
	t.Helper()
	store, err := history.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(testConfig(), asker, store), store
}

func postJSON(t *testing.T, srv http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{answer: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := decodeBody(t, w)["status"]; got != "ok" {
		t.Errorf("status field = %v, want ok", got)
	}
}

func TestRegisterLoginFlow(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{answer: "ok"})

	w := postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", w.Code)
	}

	w = postJSON(t, srv, "/register", map[string]string{"username": "bob", "password": "abc"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("short password status = %d, want 400", w.Code)
	}

	w = postJSON(t, srv, "/register", map[string]string{"username": "Admin", "password": "secret4"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("reserved username status = %d, want 400", w.Code)
	}

	w = postJSON(t, srv, "/login", map[string]string{"username": "ananya", "password": "secret4"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", w.Code, w.Body.String())
	}
	if body := decodeBody(t, w); body["is_admin"] != false {
		t.Errorf("is_admin = %v, want false", body["is_admin"])
	}

	w = postJSON(t, srv, "/login", map[string]string{"username": "ananya", "password": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", w.Code)
	}
}

func TestAdminLoginShortCircuit(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{answer: "ok"})

	w := postJSON(t, srv, "/login", map[string]string{"username": "admin", "password": "123"})
	if w.Code != http.StatusOK {
		t.Fatalf("admin login status = %d", w.Code)
	}
	if body := decodeBody(t, w); body["is_admin"] != true {
		t.Errorf("is_admin = %v, want true", body["is_admin"])
	}
}

func TestPasswordResetFlow(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{answer: "ok"})

	postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})

	w := postJSON(t, srv, "/forgot-password", map[string]string{"username": "ananya"})
	if w.Code != http.StatusOK {
		t.Fatalf("forgot-password status = %d", w.Code)
	}
	code, _ := decodeBody(t, w)["reset_code"].(string)
	if len(code) != 6 {
		t.Fatalf("reset_code = %q, want 6 digits", code)
	}

	w = postJSON(t, srv, "/reset-password", map[string]string{
		"username": "ananya", "reset_code": code, "new_password": "newpass",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("reset-password status = %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(t, srv, "/login", map[string]string{"username": "ananya", "password": "newpass"})
	if w.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", w.Code)
	}

	w = postJSON(t, srv, "/forgot-password", map[string]string{"username": "ghost"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user forgot-password status = %d, want 404", w.Code)
	}
}

func TestChatJSONPersistsHistory(t *testing.T) {
	asker := &stubAsker{answer: "50000 per semester."}
	srv, store := newTestServer(t, asker)

	w := postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	userID := int64(decodeBody(t, w)["user_id"].(float64))

	w = postJSON(t, srv, "/chat", map[string]interface{}{
		"message": "What is the hostel fee?",
		"user_id": userID,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d: %s", w.Code, w.Body.String())
	}
	if got := decodeBody(t, w)["response"]; got != "50000 per semester." {
		t.Errorf("response = %v", got)
	}
	if asker.lastQuery != "What is the hostel fee?" {
		t.Errorf("asker query = %q", asker.lastQuery)
	}

	exchanges, err := store.Exchanges(context.Background(), userID, 10)
	if err != nil {
		t.Fatalf("Exchanges: %v", err)
	}
	if len(exchanges) != 1 {
		t.Fatalf("got %d exchanges, want 1", len(exchanges))
	}
	if exchanges[0].Response != "50000 per semester." {
		t.Errorf("persisted response = %q", exchanges[0].Response)
	}
}

func TestChatMultipartForwardsAttachment(t *testing.T) {
	asker := &stubAsker{answer: "It is a campus map."}
	srv, _ := newTestServer(t, asker)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	mw.WriteField("message", "What is this?")
	fw, err := mw.CreateFormFile("file", "map.png")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte{0x89, 'P', 'N', 'G'})
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/chat", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("chat status = %d: %s", w.Code, w.Body.String())
	}
	if len(asker.lastMedia) != 1 {
		t.Fatalf("got %d attachments, want 1", len(asker.lastMedia))
	}
	if asker.lastMedia[0].MIMEType != "image/png" {
		t.Errorf("MIMEType = %q, want image/png", asker.lastMedia[0].MIMEType)
	}
	if asker.lastQuery != "What is this?" {
		t.Errorf("query = %q", asker.lastQuery)
	}
}

func TestChatGenerationFailureIsAnError(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{err: errors.New("quota exhausted")})

	w := postJSON(t, srv, "/chat", map[string]interface{}{"message": "What is the hostel fee?"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "quota exhausted") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func adminJSON(t *testing.T, srv http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("admin", "123")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestAdminEndpointsRequireCredentials(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{answer: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no credentials status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.SetBasicAuth("admin", "wrong")
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad credentials status = %d, want 401", w.Code)
	}
}

func TestAdminListsUsers(t *testing.T) {
	srv, _ := newTestServer(t, &stubAsker{answer: "ok"})

	postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	postJSON(t, srv, "/register", map[string]string{"username": "bharat", "password": "secret4"})

	w := adminJSON(t, srv, http.MethodGet, "/admin/users", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	users, ok := decodeBody(t, w)["users"].([]interface{})
	if !ok || len(users) != 2 {
		t.Errorf("users = %v, want 2 entries", users)
	}
}

func TestAdminUserHistory(t *testing.T) {
	srv, store := newTestServer(t, &stubAsker{answer: "ok"})

	w := postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	userID := int64(decodeBody(t, w)["user_id"].(float64))
	if err := store.SaveExchange(context.Background(), userID, "q", "a", ""); err != nil {
		t.Fatal(err)
	}

	w = adminJSON(t, srv, http.MethodPost, "/admin/user-history", map[string]int64{"user_id": userID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["username"] != "ananya" {
		t.Errorf("username = %v", body["username"])
	}
	items, ok := body["history"].([]interface{})
	if !ok || len(items) != 1 {
		t.Errorf("history = %v, want 1 item", body["history"])
	}

	w = adminJSON(t, srv, http.MethodPost, "/admin/user-history", map[string]int64{"user_id": 9999})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", w.Code)
	}

	w = adminJSON(t, srv, http.MethodPost, "/admin/user-history", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing user_id status = %d, want 400", w.Code)
	}
}

func TestAdminDeleteUser(t *testing.T) {
	srv, store := newTestServer(t, &stubAsker{answer: "ok"})

	w := postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	userID := int64(decodeBody(t, w)["user_id"].(float64))
	if err := store.SaveExchange(context.Background(), userID, "q", "a", ""); err != nil {
		t.Fatal(err)
	}

	w = adminJSON(t, srv, http.MethodPost, "/admin/delete-user", map[string]int64{"user_id": userID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	w = postJSON(t, srv, "/login", map[string]string{"username": "ananya", "password": "secret4"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("login after delete status = %d, want 401", w.Code)
	}
	exchanges, err := store.Exchanges(context.Background(), userID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(exchanges) != 0 {
		t.Errorf("got %d exchanges after delete, want 0", len(exchanges))
	}
}

func TestAdminClearHistoryKeepsAccount(t *testing.T) {
	srv, store := newTestServer(t, &stubAsker{answer: "ok"})

	w := postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	userID := int64(decodeBody(t, w)["user_id"].(float64))
	if err := store.SaveExchange(context.Background(), userID, "q", "a", ""); err != nil {
		t.Fatal(err)
	}

	w = adminJSON(t, srv, http.MethodPost, "/admin/clear-history", map[string]int64{"user_id": userID})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	exchanges, err := store.Exchanges(context.Background(), userID, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(exchanges) != 0 {
		t.Errorf("got %d exchanges after clear, want 0", len(exchanges))
	}
	w = postJSON(t, srv, "/login", map[string]string{"username": "ananya", "password": "secret4"})
	if w.Code != http.StatusOK {
		t.Errorf("login after clear status = %d, want 200", w.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	asker := &stubAsker{answer: "ok"}
	srv, store := newTestServer(t, asker)

	w := postJSON(t, srv, "/register", map[string]string{"username": "ananya", "password": "secret4"})
	userID := int64(decodeBody(t, w)["user_id"].(float64))
	if err := store.SaveExchange(context.Background(), userID, "q", "a", ""); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/history/"+strconv.FormatInt(userID, 10), nil)
	w2 := httptest.NewRecorder()
	srv.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("history status = %d: %s", w2.Code, w2.Body.String())
	}
	body := decodeBody(t, w2)
	items, ok := body["history"].([]interface{})
	if !ok || len(items) != 1 {
		t.Errorf("history = %v, want 1 item", body["history"])
	}
}
