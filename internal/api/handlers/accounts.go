package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	accountstore "github.com/dalemusser/classhub/internal/api/store/accounts"
	"github.com/dalemusser/classhub/internal/app/system/inputval"
	"github.com/dalemusser/classhub/internal/app/system/normalize"
	"github.com/dalemusser/classhub/internal/app/system/txn"
	"github.com/dalemusser/classhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const msgBadLogin = "Invalid email, password or role."

// Login handles POST /login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email    string `json:"email" validate:"required,email" label:"Email"`
		Password string `json:"password" validate:"required" label:"Password"`
		Role     string `json:"role" validate:"required,role" label:"Role"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	in.Email = normalize.Email(in.Email)
	in.Role = normalize.Role(in.Role)
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}

	ctx := r.Context()
	acc, err := h.Accounts.GetByEmail(ctx, in.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		h.fail(w, http.StatusUnauthorized, msgBadLogin)
		return
	}
	if err != nil {
		h.serverError(w, r, "login", err, "", "Sign in failed.")
		return
	}
	if bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(in.Password)) != nil || acc.Role != in.Role {
		h.fail(w, http.StatusUnauthorized, msgBadLogin)
		return
	}

	id := models.Identity{Email: acc.Email, Role: acc.Role}
	if acc.Role == models.RoleStudent {
		st, err := h.Students.Get(ctx, acc.MSSV)
		if err != nil {
			h.serverError(w, r, "login", err, "No student profile is linked to this account.", "Sign in failed.")
			return
		}
		id.Student = &st
	}
	h.ok(w, http.StatusOK, "Signed in.", payload{"user": id})
}

type registerInput struct {
	Email          string `json:"email" validate:"required,email,max=254" label:"Email"`
	Password       string `json:"password" validate:"required,min=6,max=72" label:"Password"`
	Role           string `json:"role" validate:"required,role" label:"Role"`
	models.Student `validate:"-"`
}

// Register handles POST /register. A student account is linked to the
// roster entry with its mssv, which is created when missing.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in registerInput
	if err := decodeJSON(w, r, &in); err != nil {
		h.badBody(w, err)
		return
	}
	in.Email = normalize.Email(in.Email)
	in.Role = normalize.Role(in.Role)
	if in.Role == "" {
		in.Role = models.RoleStudent
	}
	in.Student.Normalize()
	if res := inputval.Validate(in); res.HasErrors() {
		h.fail(w, http.StatusBadRequest, res.First())
		return
	}
	if in.Role == models.RoleStudent {
		if res := inputval.Validate(in.Student); res.HasErrors() {
			h.fail(w, http.StatusBadRequest, res.First())
			return
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), h.BcryptCost)
	if err != nil {
		h.serverError(w, r, "register", err, "", "Registration failed.")
		return
	}
	acc := models.Account{Email: in.Email, Role: in.Role, PasswordHash: hash}
	if in.Role == models.RoleStudent {
		acc.MSSV = in.MSSV
	}

	ctx := r.Context()
	var created models.Account
	err = txn.Run(ctx, h.Client, func(ctx context.Context) error {
		var err error
		created, err = h.Accounts.Create(ctx, acc)
		if err != nil || in.Role != models.RoleStudent {
			return err
		}
		_, err = h.Students.Get(ctx, in.MSSV)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return h.Students.Create(ctx, in.Student)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, accountstore.ErrDuplicateEmail) {
			h.fail(w, http.StatusConflict, sentence(err))
			return
		}
		// Without transaction support the account may already be stored.
		if !created.ID.IsZero() {
			if _, derr := h.Accounts.Delete(ctx, created.ID); derr != nil {
				h.Log.Error("register rollback failed", zap.String("email", created.Email), zap.Error(derr))
			}
		}
		h.serverError(w, r, "register", err, "", "Registration failed.")
		return
	}
	h.ok(w, http.StatusCreated, "Account created.", payload{"data": created})
}

// ListAccounts handles GET /register.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	all, err := h.Accounts.List(r.Context())
	if err != nil {
		h.serverError(w, r, "list accounts", err, "", "Could not load accounts.")
		return
	}
	h.ok(w, http.StatusOK, "", payload{"data": all})
}

// DeleteAccount handles DELETE /register/{id}. The linked student record
// is kept.
func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := models.ID(strings.TrimSpace(chi.URLParam(r, "id")))
	if id.IsZero() {
		h.fail(w, http.StatusBadRequest, "Account is required.")
		return
	}
	found, err := h.Accounts.Delete(r.Context(), id)
	if err != nil {
		h.serverError(w, r, "delete account", err, "", "Could not delete the account.")
		return
	}
	if !found {
		h.fail(w, http.StatusNotFound, "Account "+id.String()+" not found.")
		return
	}
	h.ok(w, http.StatusOK, "Account deleted.", nil)
}
