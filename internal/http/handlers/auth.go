package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/runhub-app/runhub/internal/auth"
	"github.com/runhub-app/runhub/internal/config"
	"github.com/runhub-app/runhub/internal/domain/user"
	"github.com/runhub-app/runhub/internal/repo/postgres"
	"github.com/runhub-app/runhub/internal/security"
)

const minPasswordLen = 6

type UserReader interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByPhone(ctx context.Context, phone string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, email, phone *string, passwordHash, name string) (user.User, error)
}

type AuthHandler struct {
	users  UserReader
	writer UserWriter
	log    *slog.Logger
}

func NewAuthHandler(users UserReader, writer UserWriter, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		writer: writer,
		log:    log,
	}
}

// AuthRequest is the single body shape for POST /auth; which fields matter
// depends on action, so validation is conditional and done per action.
type AuthRequest struct {
	Action   string `json:"action"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

// Handle dispatches on the action field the way the original API contract
// frames it: one POST endpoint, three operations.
func (h *AuthHandler) Handle(ctx *gin.Context) {
	var req AuthRequest

	if !BindJSON(ctx, &req) {
		return
	}

	switch req.Action {
	case "register":
		h.register(ctx, req)
	case "login":
		h.login(ctx, req)
	case "verify":
		h.verify(ctx, req)
	default:
		RespondBadRequest(ctx, "Invalid action")
	}
}

func (h *AuthHandler) register(ctx *gin.Context, req AuthRequest) {
	if req.Password == "" || (req.Email == "" && req.Phone == "") {
		RespondBadRequest(ctx, "Email or phone and password required")
		return
	}

	if utf8.RuneCountInString(req.Password) < minPasswordLen {
		RespondBadRequest(ctx, "Password must be at least 6 characters")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)

	defer cancel()

	// fast-path duplicate checks; the unique indexes behind Create are the
	// authoritative guard, this only gives the common case a clean answer
	// without burning a sequence value
	if req.Email != "" {
		_, err := h.users.GetByEmail(cctx, req.Email)

		if err == nil {
			RespondConflict(ctx, "User with this email already exists")
			return
		}

		if !errors.Is(err, postgres.ErrUserNotFound) {
			h.internal(ctx, "register email lookup", err)
			return
		}
	}

	if req.Phone != "" {
		_, err := h.users.GetByPhone(cctx, req.Phone)

		if err == nil {
			RespondConflict(ctx, "User with this phone already exists")
			return
		}

		if !errors.Is(err, postgres.ErrUserNotFound) {
			h.internal(ctx, "register phone lookup", err)
			return
		}
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		h.internal(ctx, "hash password", err)
		return
	}

	u, err := h.writer.Create(cctx, optional(req.Email), optional(req.Phone), hash, req.Name)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrEmailTaken):
			RespondConflict(ctx, "User with this email already exists")
		case errors.Is(err, postgres.ErrPhoneTaken):
			RespondConflict(ctx, "User with this phone already exists")
		default:
			h.internal(ctx, "create user", err)
		}
		return
	}

	token, err := auth.IssueToken(u.ID)

	if err != nil {
		h.internal(ctx, "issue token", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    u.Public(),
	})
}

func (h *AuthHandler) login(ctx *gin.Context, req AuthRequest) {
	if req.Password == "" || (req.Email == "" && req.Phone == "") {
		RespondBadRequest(ctx, "Email or phone and password required")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	var u user.User
	var err error

	if req.Email != "" {
		u, err = h.users.GetByEmail(cctx, req.Email)
	} else {
		u, err = h.users.GetByPhone(cctx, req.Phone)
	}

	if err != nil {
		if !errors.Is(err, postgres.ErrUserNotFound) {
			h.internal(ctx, "login lookup", err)
			return
		}

		// same answer as a wrong password so accounts cannot be enumerated
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	if !security.VerifyPassword(req.Password, u.PasswordHash) {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	token, err := auth.IssueToken(u.ID)

	if err != nil {
		h.internal(ctx, "issue token", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    u.Public(),
	})
}

func (h *AuthHandler) verify(ctx *gin.Context, req AuthRequest) {
	if req.Token == "" {
		RespondBadRequest(ctx, "Token required")
		return
	}

	userID, ok := auth.ResolveUserID(req.Token)

	if !ok {
		RespondUnauthorized(ctx, "Invalid token")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)

	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			RespondUnauthorized(ctx, "User not found")
			return
		}

		h.internal(ctx, "verify lookup", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    u.Public(),
	})
}

func (h *AuthHandler) internal(ctx *gin.Context, op string, err error) {
	if h.log != nil {
		h.log.ErrorContext(ctx.Request.Context(), "auth operation failed", "op", op, "err", err)
	}

	RespondInternal(ctx, "Server error: "+err.Error())
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
