package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"trailmate/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

const refreshTokenCookie = "refresh_token"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	refreshTTL  time.Duration
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		refreshTTL:  refreshTTL,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/oauth/kakao/callback", h.HandleKakaoCallback)
	authRoutes.Post("/oauth/kakao/signup", h.HandleKakaoSignup)
	authRoutes.Post("/oauth/token", h.HandleRedeemLoginToken)
}

// HandleSignup handles local registration. The body is multipart so the
// optional profile image can ride along with the form fields.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	req := services.SignupRequest{
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Nickname: c.FormValue("nickname"),
		Birth:    c.FormValue("birth"),
		Gender:   c.FormValue("gender"),
		IsAgree:  c.FormValue("isAgree") == "true",
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	// Missing file is fine, the default profile image is used instead.
	profileImage, err := c.FormFile("profileImage")
	if err != nil {
		profileImage = nil
	}

	if err := h.authService.Signup(c.UserContext(), req, profileImage); err != nil {
		log.Printf("Error registering user: %v", err)
		if errors.Is(err, services.ErrEmailAlreadyExists) || errors.Is(err, services.ErrNicknameAlreadyExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not register user",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
	})
}

// HandleLogin handles local login. The refresh token travels back as an
// HTTP-only cookie, the access token in the body.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	response, refreshToken, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		log.Printf("Error during login for %s: %v", req.Email, err)
		switch {
		case errors.Is(err, services.ErrUserNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "User not found",
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authentication failed",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Could not log in",
				"error":   err.Error(),
			})
		}
	}

	c.Cookie(h.refreshCookie(refreshToken))
	return c.JSON(response)
}

// HandleLogout tears down the session best effort and always clears the
// refresh cookie, so a repeated call without tokens still succeeds.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	refreshToken := c.Cookies(refreshTokenCookie)
	accessToken := bearerToken(c)

	h.authService.Logout(c.UserContext(), refreshToken, accessToken)

	c.Cookie(h.expiredRefreshCookie())
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleKakaoCallback receives the Kakao authorization code and answers
// with the deep link that routes the app to login or signup.
func (h *AuthHandler) HandleKakaoCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Authorization code is required",
		})
	}

	response, refreshToken, err := h.authService.ProcessKakaoLogin(c.UserContext(), code)
	if err != nil {
		log.Printf("Error during kakao login: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not process kakao login",
			"error":   err.Error(),
		})
	}

	if refreshToken != "" {
		c.Cookie(h.refreshCookie(refreshToken))
	}
	return c.JSON(response)
}

// HandleKakaoSignup completes a provisional Kakao signup and logs the
// new user in. The temp signup token issued by the callback must ride
// in the Authorization header; the body only carries the details
// collected in-app.
func (h *AuthHandler) HandleKakaoSignup(c *fiber.Ctx) error {
	tempToken := bearerToken(c)
	if tempToken == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Temp signup token is required",
		})
	}

	var req services.KakaoSignupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing kakao signup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	response, refreshToken, err := h.authService.CompleteKakaoSignup(c.UserContext(), tempToken, req)
	if err != nil {
		log.Printf("Error completing kakao signup: %v", err)
		switch {
		case errors.Is(err, services.ErrInvalidToken):
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired temp signup token",
			})
		case errors.Is(err, services.ErrEmailAlreadyExists), errors.Is(err, services.ErrNicknameAlreadyExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Registration failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not complete kakao signup",
			"error":   err.Error(),
		})
	}

	c.Cookie(h.refreshCookie(refreshToken))
	return c.JSON(response)
}

// HandleRedeemLoginToken exchanges a one-time Kakao login token for the
// cached login response.
func (h *AuthHandler) HandleRedeemLoginToken(c *fiber.Ctx) error {
	var req struct {
		LoginToken string `json:"loginToken" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	response, err := h.authService.RedeemLoginToken(c.UserContext(), req.LoginToken)
	if err != nil {
		if errors.Is(err, services.ErrLoginTokenNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Login token expired or already used",
			})
		}
		log.Printf("Error redeeming login token: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not redeem login token",
			"error":   err.Error(),
		})
	}

	return c.JSON(response)
}

func (h *AuthHandler) refreshCookie(token string) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.refreshTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

func (h *AuthHandler) expiredRefreshCookie() *fiber.Cookie {
	return &fiber.Cookie{
		Name:     refreshTokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
}

// bearerToken extracts the token from an Authorization header, or ""
// when the header is absent or malformed.
func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// validationErrorResponse renders validator failures as a field map.
func validationErrorResponse(c *fiber.Ctx, err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}
