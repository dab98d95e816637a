package server_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"Bt1Arena/core/auth"
	"Bt1Arena/server"
)

func registerForm() url.Values {
	return url.Values{
		"username":        {"player1"},
		"email":           {"Player1@Example.com"},
		"password":        {"secret1"},
		"confirmPassword": {"secret1"},
		"acceptTerms":     {"on"},
	}
}

func TestRegisterSuccess(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.h.RegisterHandler(rr, formRequest("/auth/register", registerForm()))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303; body: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}

	cookie := findCookie(t, rr, server.SessionCookieName)
	if cookie.MaxAge != 86400 {
		t.Errorf("cookie MaxAge = %d, want 86400", cookie.MaxAge)
	}
	if !cookie.HttpOnly {
		t.Error("cookie must be HttpOnly")
	}
	if cookie.Secure {
		t.Error("cookie must not be Secure in development")
	}

	userID, err := auth.ParseSessionToken(env.cfg.SessionSecret, cookie.Value)
	if err != nil {
		t.Fatalf("session cookie does not hold a valid token: %v", err)
	}

	user, err := env.users.GetUserByID(userID)
	if err != nil || user == nil {
		t.Fatalf("registered user not found: %v", err)
	}
	if user.Email != "player1@example.com" {
		t.Errorf("email = %q, want lower-cased player1@example.com", user.Email)
	}
	if user.PasswordHash == "secret1" {
		t.Error("password must be stored hashed")
	}
	if !auth.CheckPasswordHash("secret1", user.PasswordHash) {
		t.Error("stored hash does not verify the password")
	}
	if !user.IsOnline {
		t.Error("a fresh registration should be online")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(url.Values)
		message string
	}{
		{
			name:    "missing username",
			mutate:  func(f url.Values) { f.Set("username", "") },
			message: "All required fields must be filled",
		},
		{
			name:    "username too short",
			mutate:  func(f url.Values) { f.Set("username", "ab") },
			message: "Username must be between 3 and 20 characters",
		},
		{
			name:    "username too long",
			mutate:  func(f url.Values) { f.Set("username", "abcdefghijklmnopqrstu") },
			message: "Username must be between 3 and 20 characters",
		},
		{
			name:    "username with invalid characters",
			mutate:  func(f url.Values) { f.Set("username", "player one!") },
			message: "Username can only contain letters, numbers, and underscores",
		},
		{
			name:    "invalid email",
			mutate:  func(f url.Values) { f.Set("email", "not-an-email") },
			message: "Please provide a valid email address",
		},
		{
			name: "password too short",
			mutate: func(f url.Values) {
				f.Set("password", "12345")
				f.Set("confirmPassword", "12345")
			},
			message: "Password must be at least 6 characters long",
		},
		{
			name:    "password mismatch",
			mutate:  func(f url.Values) { f.Set("confirmPassword", "different") },
			message: "Passwords do not match",
		},
		{
			name:    "terms not accepted",
			mutate:  func(f url.Values) { f.Del("acceptTerms") },
			message: "You must accept the Terms of Service and Privacy Policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			form := registerForm()
			tt.mutate(form)

			rr := httptest.NewRecorder()
			env.h.RegisterHandler(rr, formRequest("/auth/register", form))

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400; body: %s", rr.Code, rr.Body.String())
			}
			if env := decodeEnvelope(t, rr); env.Message != tt.message {
				t.Errorf("message = %q, want %q", env.Message, tt.message)
			}
		})
	}
}

func TestRegisterMinimumPasswordLengthAccepted(t *testing.T) {
	env := newTestEnv(t)
	form := registerForm()
	form.Set("password", "123456")
	form.Set("confirmPassword", "123456")

	rr := httptest.NewRecorder()
	env.h.RegisterHandler(rr, formRequest("/auth/register", form))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("six-character password should be accepted, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player1", "player1@example.com", "secret1")

	// 邮箱冲突优先于用户名冲突
	form := registerForm()
	form.Set("username", "someone_else")
	rr := httptest.NewRecorder()
	env.h.RegisterHandler(rr, formRequest("/auth/register", form))

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Message != "Email is already registered" {
		t.Errorf("message = %q, want email conflict", env.Message)
	}

	form = registerForm()
	form.Set("email", "fresh@example.com")
	rr = httptest.NewRecorder()
	env.h.RegisterHandler(rr, formRequest("/auth/register", form))

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Message != "Username is already taken" {
		t.Errorf("message = %q, want username conflict", env.Message)
	}

	if len(env.users.users) != 1 {
		t.Errorf("user count = %d, want 1 (no row created on conflict)", len(env.users.users))
	}
}

func TestLoginSuccess(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "player1", "player1@example.com", "secret1")

	// 用户名和邮箱都可作为登录标识
	for _, identifier := range []string{"player1", "player1@example.com"} {
		form := url.Values{"identifier": {identifier}, "password": {"secret1"}}
		rr := httptest.NewRecorder()
		env.h.LoginHandler(rr, formRequest("/auth/login", form))

		if rr.Code != http.StatusSeeOther {
			t.Fatalf("login with %q: status = %d, want 303; body: %s", identifier, rr.Code, rr.Body.String())
		}
		if loc := rr.Header().Get("Location"); loc != "/" {
			t.Errorf("Location = %q, want /", loc)
		}

		cookie := findCookie(t, rr, server.SessionCookieName)
		if cookie.MaxAge != 86400 {
			t.Errorf("cookie MaxAge = %d, want 86400", cookie.MaxAge)
		}
		userID, err := auth.ParseSessionToken(env.cfg.SessionSecret, cookie.Value)
		if err != nil || userID != user.ID {
			t.Errorf("token userID = %d (err %v), want %d", userID, err, user.ID)
		}
	}

	if !env.users.users[user.ID].IsOnline {
		t.Error("login should mark the user online")
	}
}

func TestLoginRememberExtendsSession(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player1", "player1@example.com", "secret1")

	form := url.Values{"identifier": {"player1"}, "password": {"secret1"}, "remember": {"on"}}
	rr := httptest.NewRecorder()
	env.h.LoginHandler(rr, formRequest("/auth/login", form))

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if cookie := findCookie(t, rr, server.SessionCookieName); cookie.MaxAge != 30*24*60*60 {
		t.Errorf("cookie MaxAge = %d, want 2592000", cookie.MaxAge)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "player1", "player1@example.com", "secret1")

	// 未知用户与密码错误返回同一条消息
	forms := []url.Values{
		{"identifier": {"nobody"}, "password": {"secret1"}},
		{"identifier": {"player1"}, "password": {"wrong"}},
	}
	for _, form := range forms {
		rr := httptest.NewRecorder()
		env.h.LoginHandler(rr, formRequest("/auth/login", form))

		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rr.Code)
		}
		if env := decodeEnvelope(t, rr); env.Message != "Invalid credentials" {
			t.Errorf("message = %q, want Invalid credentials", env.Message)
		}
	}
}

func TestLoginMissingFields(t *testing.T) {
	env := newTestEnv(t)

	rr := httptest.NewRecorder()
	env.h.LoginHandler(rr, formRequest("/auth/login", url.Values{"identifier": {"player1"}}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Message != "Email/username and password are required" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "player1", "player1@example.com", "secret1")
	env.users.users[user.ID].IsOnline = true

	req := env.authedForm(t, user.ID, "/auth/logout", url.Values{})
	rr := httptest.NewRecorder()
	env.h.LogoutHandler(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rr.Code)
	}
	if loc := rr.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
	if cookie := findCookie(t, rr, server.SessionCookieName); cookie.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", cookie.MaxAge)
	}
	if env.users.users[user.ID].IsOnline {
		t.Error("logout should mark the user offline")
	}
}

func TestLogoutIsBestEffort(t *testing.T) {
	env := newTestEnv(t)
	user := env.seedUser(t, "player1", "player1@example.com", "secret1")
	env.users.setOnlineErr = errForced

	req := env.authedForm(t, user.ID, "/auth/logout", url.Values{})
	rr := httptest.NewRecorder()
	env.h.LogoutHandler(rr, req)

	// 状态更新失败不阻止退出
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 even when the status update fails", rr.Code)
	}
	if cookie := findCookie(t, rr, server.SessionCookieName); cookie.MaxAge != -1 {
		t.Errorf("cookie MaxAge = %d, want -1", cookie.MaxAge)
	}

	// 没有cookie时同样直接跳转
	rr = httptest.NewRecorder()
	env.h.LogoutHandler(rr, formRequest("/auth/logout", url.Values{}))
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303 without a cookie", rr.Code)
	}
}
