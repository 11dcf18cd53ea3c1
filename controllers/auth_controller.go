package controller

import (
	"strings"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"taskboard/config"
	"taskboard/models"
	"taskboard/utils"
)

type RegisterRequest struct {
	Fullname         string `json:"fullname" validate:"required,max=150"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8"`
	RepeatedPassword string `json:"repeated_password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"` // legacy alias for email
	Password string `json:"password" validate:"required"`
}

// tokenPayload is the response for both registration and login.
func tokenPayload(token string, user *models.User) fiber.Map {
	return fiber.Map{
		"token":    token,
		"user_id":  user.ID,
		"email":    user.Email,
		"fullname": user.Fullname,
	}
}

// Register creates a new account and returns a token payload.
func Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	if fields := utils.ValidateStruct(req); fields != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fields)
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := checkmail.ValidateFormat(email); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"email": []string{"Enter a valid email address."},
		})
	}
	if req.Password != req.RepeatedPassword {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"repeated_password": []string{"Passwords do not match."},
		})
	}

	var existing models.User
	if err := config.DB.Where("email = ?", email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"email": []string{"A user with this email already exists."},
		})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, err)
	}

	user := models.User{
		Email:        email,
		Fullname:     strings.TrimSpace(req.Fullname),
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		return respondError(c, err)
	}

	token, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tokenPayload(token, &user))
}

// Login exchanges credentials for a token. The legacy username field is
// accepted as an alias for email.
func Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"detail": "Invalid request body",
		})
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		email = strings.ToLower(strings.TrimSpace(req.Username))
	}
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"email": []string{"Email is required."},
		})
	}
	if req.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"password": []string{"This field is required."},
		})
	}

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		return invalidCredentials(c)
	}
	if !user.IsActive {
		return invalidCredentials(c)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return invalidCredentials(c)
	}

	token, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(tokenPayload(token, &user))
}

func invalidCredentials(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"detail": []string{"Invalid credentials."},
	})
}

// EmailCheck reports whether an account with the given email exists.
func EmailCheck(c *fiber.Ctx) error {
	email := strings.ToLower(strings.TrimSpace(c.Query("email")))
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"email": []string{"Missing email"},
		})
	}

	var user models.User
	if err := config.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"detail": "Not found",
			})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"id":       user.ID,
		"email":    user.Email,
		"fullname": user.Fullname,
	})
}
