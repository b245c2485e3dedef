package handlers

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"

	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/auth"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/mailer"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/models"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/response"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/store"
	"github.com/Kinda-ansh/pk-photogrsphy-admin/internal/validation"
)

const (
	msgInvalidCredentials = "Invalid email or password."
	msgLoginInput         = "Email and password are required."
	msgSignupFailed       = "Something went wrong, Admin not created."
	msgAdminNotFound      = "Admin not found."

	verificationSubject = "Verify your email"
	mailTimeout         = 10 * time.Second
)

type AdminRepository interface {
	Save(ctx context.Context, a *models.Admin) error
	FindByEmail(ctx context.Context, email string) (*models.Admin, error)
	FindByID(ctx context.Context, id string) (*models.Admin, error)
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type TokenIssuer interface {
	Issue(id auth.Identity) (string, time.Time, error)
}

type AdminHandler struct {
	admins AdminRepository
	hasher PasswordHasher
	tokens TokenIssuer
	mail   mailer.Sender
	log    logr.Logger

	dummyOnce   sync.Once
	dummyDigest string
}

func NewAdminHandler(admins AdminRepository, hasher PasswordHasher, tokens TokenIssuer, mail mailer.Sender, log logr.Logger) *AdminHandler {
	return &AdminHandler{
		admins: admins,
		hasher: hasher,
		tokens: tokens,
		mail:   mail,
		log:    log.WithName("admin"),
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignUp creates an admin and mails a verification code.
// POST /api/v1/admin/signup
func (h *AdminHandler) SignUp(c *gin.Context) {
	record, ok := bindRecord(c)
	if !ok {
		return
	}
	if err := validation.AdminSignup.Validate(record); err != nil {
		rejectInvalid(c, h.log, err)
		return
	}

	admin := &models.Admin{
		FullName: stringField(record, "fullname"),
		Email:    stringField(record, "email"),
	}
	admin.SetPassword(stringField(record, "password"))

	if err := h.admins.Save(c.Request.Context(), admin); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			response.Fail(c, response.KindConflict, msgEmailExists)
			return
		}
		h.log.Error(err, "create admin failed")
		response.Fail(c, response.KindInternal, msgSignupFailed)
		return
	}

	h.sendVerification(c.Request.Context(), admin)
	response.Data(c, http.StatusCreated, admin)
}

// Login exchanges credentials for a token. Unknown emails and wrong
// passwords get the same answer.
// POST /api/v1/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var in loginRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, response.KindValidation, msgLoginInput)
		return
	}

	admin, err := h.admins.FindByEmail(c.Request.Context(), in.Email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.log.Error(err, "find admin failed")
			response.Fail(c, response.KindInternal, msgSomethingWentWrong)
			return
		}
		// keep the timing of an unknown email close to a wrong password
		h.hasher.Verify(in.Password, h.dummyHash())
		response.Fail(c, response.KindUnauthenticated, msgInvalidCredentials)
		return
	}
	if !h.hasher.Verify(in.Password, admin.PasswordHash) {
		response.Fail(c, response.KindUnauthenticated, msgInvalidCredentials)
		return
	}

	token, expiresAt, err := h.tokens.Issue(auth.Identity{ID: admin.ID, Email: admin.Email})
	if err != nil {
		h.log.Error(err, "issue token failed", "admin", admin.ID)
		response.Fail(c, response.KindInternal, msgSomethingWentWrong)
		return
	}

	response.Data(c, http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"admin":     admin,
	})
}

// Profile returns the admin named by the token subject.
// GET /api/v1/admin/profile
func (h *AdminHandler) Profile(c *gin.Context) {
	id := auth.IdentityFromContext(c.Request.Context())
	if id == nil {
		response.Fail(c, response.KindUnauthenticated, "")
		return
	}

	admin, err := h.admins.FindByID(c.Request.Context(), id.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		response.Fail(c, response.KindNotFound, msgAdminNotFound)
		return
	case err != nil:
		h.log.Error(err, "get profile failed", "admin", id.ID)
		response.Fail(c, response.KindInternal, msgSomethingWentWrong)
		return
	}
	response.Data(c, http.StatusOK, admin)
}

func (h *AdminHandler) dummyHash() string {
	h.dummyOnce.Do(func() {
		digest, err := h.hasher.Hash("not-a-real-password")
		if err != nil {
			h.log.Error(err, "hash dummy password failed")
			return
		}
		h.dummyDigest = digest
	})
	return h.dummyDigest
}

// sendVerification mails a one-time code. Delivery problems are logged and
// never fail the signup.
func (h *AdminHandler) sendVerification(ctx context.Context, admin *models.Admin) {
	code, err := oneTimeCode()
	if err != nil {
		h.log.Error(err, "generate verification code failed", "admin", admin.ID)
		return
	}
	ctx, cancel := context.WithTimeout(ctx, mailTimeout)
	defer cancel()
	if err := h.mail.Send(ctx, admin.FullName, verificationSubject, admin.Email, code); err != nil {
		h.log.Error(err, "send verification mail failed", "admin", admin.ID)
	}
}

func oneTimeCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
