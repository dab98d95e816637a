package server

import (
	"errors"
	"net/http"
	"strings"

	"Bt1Arena/core/apperr"
	"Bt1Arena/core/auth"
	"Bt1Arena/logger"
	"Bt1Arena/model"
	"Bt1Arena/repository"
)

// RegisterRequest is the registration form contract.
type RegisterRequest struct {
	Username        string `validate:"required,min=3,max=20,username"`
	Email           string `validate:"required,email"`
	DisplayName     string `validate:"omitempty,max=50"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"required,eqfield=Password"`
	AcceptTerms     bool   `validate:"eq=true"`
}

var registerMessages = map[string]string{
	"Username.required":        "All required fields must be filled",
	"Email.required":           "All required fields must be filled",
	"Password.required":        "All required fields must be filled",
	"ConfirmPassword.required": "All required fields must be filled",
	"AcceptTerms":              "You must accept the Terms of Service and Privacy Policy",
	"Username.min":             "Username must be between 3 and 20 characters",
	"Username.max":             "Username must be between 3 and 20 characters",
	"Username.username":        "Username can only contain letters, numbers, and underscores",
	"Email.email":              "Please provide a valid email address",
	"DisplayName.max":          "Display name must be 50 characters or less",
	"Password.min":             "Password must be at least 6 characters long",
	"ConfirmPassword.eqfield":  "Passwords do not match",
}

// RegisterHandler handles user registration requests.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	req := RegisterRequest{
		Username:        strings.TrimSpace(r.FormValue("username")),
		Email:           strings.ToLower(strings.TrimSpace(r.FormValue("email"))),
		DisplayName:     strings.TrimSpace(r.FormValue("displayName")),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		AcceptTerms:     r.FormValue("acceptTerms") == "on",
	}

	if err := checkRequest(req, registerMessages); err != nil {
		h.writeError(w, err)
		return
	}

	// 唯一性检查：邮箱优先
	if existing, err := h.userRepo.GetUserByEmail(req.Email); err != nil {
		h.writeError(w, apperr.Internal("An error occurred during registration", err))
		return
	} else if existing != nil {
		h.writeError(w, apperr.Conflict("Email is already registered"))
		return
	}
	if existing, err := h.userRepo.GetUserByUsername(req.Username); err != nil {
		h.writeError(w, apperr.Internal("An error occurred during registration", err))
		return
	} else if existing != nil {
		h.writeError(w, apperr.Conflict("Username is already taken"))
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, apperr.Internal("An error occurred during registration", err))
		return
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		DisplayName:  nullString(req.DisplayName),
		PasswordHash: hashedPassword,
		IsOnline:     true,
	}

	userID, err := h.userRepo.CreateUser(user)
	if err != nil {
		// 数据库唯一约束兜底：并发注册时前面的检查可能漏掉
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			h.writeError(w, apperr.Conflict("Email is already registered"))
		case errors.Is(err, repository.ErrDuplicateUsername):
			h.writeError(w, apperr.Conflict("Username is already taken"))
		default:
			logger.Error("[Register] 创建用户失败", logger.String("username", req.Username), logger.ErrorField(err))
			h.writeError(w, apperr.Internal("An error occurred during registration", err))
		}
		return
	}

	token, err := auth.GenerateSessionToken(h.cfg.SessionSecret, userID, h.cfg.SessionTTL)
	if err != nil {
		h.writeError(w, apperr.Internal("An error occurred during registration", err))
		return
	}
	h.setSessionCookie(w, token, h.cfg.SessionTTL)

	logger.Info("[Register] 注册成功", logger.Int64("userId", userID), logger.String("username", req.Username))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoginRequest is the login form contract. The identifier can be a
// username or an email address.
type LoginRequest struct {
	Identifier string `validate:"required"`
	Password   string `validate:"required"`
}

var loginMessages = map[string]string{
	"Identifier": "Email/username and password are required",
	"Password":   "Email/username and password are required",
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, apperr.Validation("Invalid form data"))
		return
	}

	req := LoginRequest{
		Identifier: strings.TrimSpace(r.FormValue("identifier")),
		Password:   r.FormValue("password"),
	}
	remember := r.FormValue("remember") == "on"

	if err := checkRequest(req, loginMessages); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.userRepo.GetUserByIdentifier(req.Identifier)
	if err != nil {
		logger.Error("[Login] 查询用户失败", logger.ErrorField(err))
		h.writeError(w, apperr.Internal("An error occurred during login", err))
		return
	}

	// 用户不存在与密码错误返回同一条消息，避免账号枚举
	if user == nil {
		logger.Warn("[Login] 用户不存在", logger.String("identifier", req.Identifier))
		h.writeError(w, apperr.Auth("Invalid credentials"))
		return
	}
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.Warn("[Login] 密码验证失败", logger.String("username", user.Username))
		h.writeError(w, apperr.Auth("Invalid credentials"))
		return
	}

	if err := h.userRepo.SetOnlineStatus(user.ID, true); err != nil {
		logger.Error("[Login] 更新在线状态失败", logger.Int64("userId", user.ID), logger.ErrorField(err))
		h.writeError(w, apperr.Internal("An error occurred during login", err))
		return
	}

	ttl := h.cfg.SessionTTL
	if remember {
		ttl = h.cfg.SessionRememberTTL
	}
	token, err := auth.GenerateSessionToken(h.cfg.SessionSecret, user.ID, ttl)
	if err != nil {
		h.writeError(w, apperr.Internal("An error occurred during login", err))
		return
	}
	h.setSessionCookie(w, token, ttl)

	logger.Info("[Login] 登录成功", logger.String("username", user.Username), logger.Bool("remember", remember))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LogoutHandler ends the session. The online-status reset is best-effort;
// the cookie is deleted unconditionally and the caller always gets the
// redirect, even when the status update fails.
func (h *APIHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		if userID, err := auth.ParseSessionToken(h.cfg.SessionSecret, cookie.Value); err == nil {
			if err := h.userRepo.SetOnlineStatus(userID, false); err != nil {
				logger.Error("[Logout] 更新在线状态失败", logger.Int64("userId", userID), logger.ErrorField(err))
			}
		}
	}

	h.clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
