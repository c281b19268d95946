package routes

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"storefront/apperr"
	"storefront/auth"
	"storefront/middleware"
	"storefront/models"
	"storefront/repository"
)

type UserHandler struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens auth.TokenService
}

type tokenRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type createUserRequest struct {
	Firstname       string `json:"firstname" validate:"required,max=300"`
	Surname         string `json:"surname" validate:"required,max=300"`
	Email           string `json:"email" validate:"required,email,max=300"`
	Password        string `json:"password" validate:"required,max=72"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type updateUserRequest struct {
	Firstname string `json:"firstname" validate:"required,max=300"`
	Surname   string `json:"surname" validate:"required,max=300"`
	Email     string `json:"email" validate:"required,email,max=300"`
}

type userResponse struct {
	ID        uint   `json:"id"`
	Firstname string `json:"firstname"`
	Surname   string `json:"surname"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func newUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Firstname: u.Firstname, Surname: u.Surname, Email: u.Email, Role: u.Role}
}

// Token exchanges credentials for a bearer token. Unknown email and wrong
// password get the same answer.
func (h *UserHandler) Token(c *fiber.Ctx) error {
	var req tokenRequest
	if err := bind(c, &req); err != nil {
		return apperr.Validation("Email and password are required")
	}

	invalid := apperr.Validation("Invalid email or password")

	user, err := h.users.FindByEmail(c.UserContext(), normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalid
		}
		return apperr.Internal(err)
	}
	if err := h.hasher.Compare(user.Password, req.Password); err != nil {
		return invalid
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(fiber.Map{
		"token":      token,
		"expires_in": int(h.tokens.Expiry().Seconds()),
	})
}

func (h *UserHandler) Create(c *fiber.Ctx) error {
	var req createUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Password != req.ConfirmPassword {
		return apperr.InvalidFields("Passwords do not match", map[string]string{"confirmPassword": "eqfield"})
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return apperr.Internal(err)
	}

	user := &models.User{
		Firstname: strings.TrimSpace(req.Firstname),
		Surname:   strings.TrimSpace(req.Surname),
		Email:     normalizeEmail(req.Email),
		Password:  hash,
		Role:      models.RoleUser,
	}
	if err := h.users.Create(c.UserContext(), user); err != nil {
		return storeError(err, "User not found")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"userId":  user.ID,
	})
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	user, err := h.users.FindByID(c.UserContext(), id)
	if err != nil {
		return storeError(err, "User not found")
	}
	return c.JSON(newUserResponse(user))
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := h.authorize(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.users.FindByID(c.UserContext(), id)
	if err != nil {
		return storeError(err, "User not found")
	}

	user.Firstname = strings.TrimSpace(req.Firstname)
	user.Surname = strings.TrimSpace(req.Surname)
	user.Email = normalizeEmail(req.Email)
	if err := h.users.Update(c.UserContext(), user); err != nil {
		return storeError(err, "User not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := h.authorize(c)
	if err != nil {
		return err
	}

	if err := h.users.Delete(c.UserContext(), id); err != nil {
		return storeError(err, "User not found")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// authorize parses the target id and allows the account owner or an admin.
func (h *UserHandler) authorize(c *fiber.Ctx) (uint, error) {
	id, err := parseID(c)
	if err != nil {
		return 0, err
	}

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return 0, apperr.Unauthorized("Token is required")
	}
	if claims.UserID != id && !claims.IsAdmin() {
		return 0, apperr.Forbidden("Access denied")
	}
	return id, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
