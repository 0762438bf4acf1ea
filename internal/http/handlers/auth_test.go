package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/runhub-app/runhub/internal/domain/user"
	"github.com/runhub-app/runhub/internal/http/handlers"
	"github.com/runhub-app/runhub/internal/repo/postgres"
	"github.com/runhub-app/runhub/internal/security"
)

type fakeUsers struct {
	nextID int64
	users  map[int64]user.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]user.User{}}
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email != nil && *u.Email == email {
			return u, nil
		}
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsers) GetByPhone(_ context.Context, phone string) (user.User, error) {
	for _, u := range f.users {
		if u.Phone != nil && *u.Phone == phone {
			return u, nil
		}
	}
	return user.User{}, postgres.ErrUserNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, postgres.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, email, phone *string, passwordHash, name string) (user.User, error) {
	for _, u := range f.users {
		if email != nil && u.Email != nil && *u.Email == *email {
			return user.User{}, postgres.ErrEmailTaken
		}
		if phone != nil && u.Phone != nil && *u.Phone == *phone {
			return user.User{}, postgres.ErrPhoneTaken
		}
	}

	f.nextID++
	u := user.User{
		ID:           f.nextID,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		Name:         name,
		CreatedAt:    time.Now().UTC(),
	}
	f.users[u.ID] = u

	return u, nil
}

func newAuthRouter(store *fakeUsers) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	h := handlers.NewAuthHandler(store, store, nil)
	r.POST("/auth", h.Handle)

	return r
}

func postAuth(t *testing.T, r *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

type authResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Token   string `json:"token"`
	User    struct {
		ID    int64   `json:"id"`
		Email *string `json:"email"`
		Phone *string `json:"phone"`
		Name  string  `json:"name"`
	} `json:"user"`
}

func decodeAuth(t *testing.T, w *httptest.ResponseRecorder) authResponse {
	t.Helper()

	var resp authResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body %q: %v", w.Body.String(), err)
	}

	return resp
}

func TestRegisterThenLogin_SameUser(t *testing.T) {
	r := newAuthRouter(newFakeUsers())

	w := postAuth(t, r, `{"action":"register","email":"a@x.com","password":"secret1","name":"A"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", w.Code, w.Body.String())
	}

	reg := decodeAuth(t, w)

	if !reg.Success || reg.Token == "" || reg.User.ID == 0 {
		t.Fatalf("unexpected register response: %+v", reg)
	}

	if reg.User.Email == nil || *reg.User.Email != "a@x.com" || reg.User.Name != "A" {
		t.Fatalf("register echoed wrong user: %+v", reg.User)
	}

	w = postAuth(t, r, `{"action":"login","email":"a@x.com","password":"secret1"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}

	login := decodeAuth(t, w)

	if login.User.ID != reg.User.ID {
		t.Fatalf("login user id = %d, register user id = %d", login.User.ID, reg.User.ID)
	}

	if login.Token == reg.Token {
		t.Fatalf("login should mint a fresh token")
	}
}

func TestRegister_Validation(t *testing.T) {
	cases := map[string]string{
		"no password":       `{"action":"register","email":"a@x.com"}`,
		"no email or phone": `{"action":"register","password":"secret1"}`,
		"short password":    `{"action":"register","email":"a@x.com","password":"five5"}`,
	}

	r := newAuthRouter(newFakeUsers())

	for name, body := range cases {
		w := postAuth(t, r, body)

		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400, body = %s", name, w.Code, w.Body.String())
		}

		resp := decodeAuth(t, w)

		if resp.Success || resp.Error == "" {
			t.Errorf("%s: expected failure envelope, got %s", name, w.Body.String())
		}
	}
}

func TestRegister_DuplicateEmailAndPhone(t *testing.T) {
	r := newAuthRouter(newFakeUsers())

	if w := postAuth(t, r, `{"action":"register","email":"a@x.com","password":"secret1"}`); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %s", w.Body.String())
	}

	if w := postAuth(t, r, `{"action":"register","phone":"+15550001","password":"secret1"}`); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %s", w.Body.String())
	}

	w := postAuth(t, r, `{"action":"register","email":"a@x.com","password":"other12"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email status = %d, want 409, body = %s", w.Code, w.Body.String())
	}

	w = postAuth(t, r, `{"action":"register","phone":"+15550001","password":"other12"}`)

	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate phone status = %d, want 409, body = %s", w.Code, w.Body.String())
	}
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	r := newAuthRouter(newFakeUsers())

	if w := postAuth(t, r, `{"action":"register","email":"a@x.com","password":"secret1"}`); w.Code != http.StatusOK {
		t.Fatalf("seed register failed: %s", w.Body.String())
	}

	wrongPass := postAuth(t, r, `{"action":"login","email":"a@x.com","password":"wrongpass"}`)
	unknown := postAuth(t, r, `{"action":"login","email":"nobody@x.com","password":"secret1"}`)

	if wrongPass.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d / %d, want 401 / 401", wrongPass.Code, unknown.Code)
	}

	if wrongPass.Body.String() != unknown.Body.String() {
		t.Fatalf("failure bodies differ: %q vs %q", wrongPass.Body.String(), unknown.Body.String())
	}
}

func TestVerify_Flows(t *testing.T) {
	store := newFakeUsers()
	r := newAuthRouter(store)

	w := postAuth(t, r, `{"action":"register","email":"a@x.com","password":"secret1","name":"A"}`)
	reg := decodeAuth(t, w)

	// issued token verifies
	w = postAuth(t, r, fmt.Sprintf(`{"action":"verify","token":%q}`, reg.Token))

	if w.Code != http.StatusOK {
		t.Fatalf("verify status = %d, body = %s", w.Code, w.Body.String())
	}

	if got := decodeAuth(t, w); got.User.ID != reg.User.ID {
		t.Fatalf("verify user id = %d, want %d", got.User.ID, reg.User.ID)
	}

	// a forged prefix with a real id also verifies: the decoding step does
	// not authenticate the prefix, only the store lookup gates access
	w = postAuth(t, r, fmt.Sprintf(`{"action":"verify","token":"randomjunk_%d"}`, reg.User.ID))

	if w.Code != http.StatusOK {
		t.Fatalf("forged-prefix verify status = %d, body = %s", w.Code, w.Body.String())
	}

	// a bare decimal id is a one-segment token and decodes the same way
	w = postAuth(t, r, fmt.Sprintf(`{"action":"verify","token":"%d"}`, reg.User.ID))

	if w.Code != http.StatusOK {
		t.Fatalf("bare-id verify status = %d, body = %s", w.Code, w.Body.String())
	}

	// missing token
	if w := postAuth(t, r, `{"action":"verify"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing token status = %d, want 400", w.Code)
	}

	// undecodable token
	if w := postAuth(t, r, `{"action":"verify","token":"garbage"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token status = %d, want 401", w.Code)
	}

	// id that no longer exists
	if w := postAuth(t, r, `{"action":"verify","token":"junk_9999"}`); w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user status = %d, want 401", w.Code)
	}
}

func TestAuth_InvalidAction(t *testing.T) {
	r := newAuthRouter(newFakeUsers())

	w := postAuth(t, r, `{"action":"deactivate"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAuth_NeverLeaksPasswordHash(t *testing.T) {
	store := newFakeUsers()
	r := newAuthRouter(store)

	w := postAuth(t, r, `{"action":"register","email":"a@x.com","password":"secret1"}`)
	reg := decodeAuth(t, w)

	stored, err := store.GetByID(context.Background(), reg.User.ID)

	if err != nil {
		t.Fatalf("stored user missing: %v", err)
	}

	if !security.VerifyPassword("secret1", stored.PasswordHash) {
		t.Fatalf("stored hash does not verify the password")
	}

	body := w.Body.String()

	if strings.Contains(body, stored.PasswordHash) || strings.Contains(body, "passwordHash") {
		t.Fatalf("response leaked credential material: %s", body)
	}
}
