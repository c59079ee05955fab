package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"time"

	"trailmate/internal/models"
	"trailmate/internal/repositories"
	"trailmate/pkg/storage"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	loginTokenTTL      = 5 * time.Minute
	tempSignupTokenTTL = 10 * time.Minute
)

// EventPublisher publishes auth lifecycle events. It is best effort: a
// publish failure never fails the request that triggered it.
type EventPublisher interface {
	Publish(event string, payload map[string]interface{}) error
}

// SignupRequest is the payload for local registration.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Nickname string `json:"nickname" validate:"required,min=2,max=100"`
	Birth    string `json:"birth" validate:"required,datetime=2006-01-02"`
	Gender   string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	IsAgree  bool   `json:"isAgree"`
}

// LoginRequest is the payload for local login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// KakaoSignupRequest carries the details collected in-app to complete a
// provisional Kakao signup. Identity fields (email, provider id, profile
// image) come from the temp signup token, never from the client.
type KakaoSignupRequest struct {
	Nickname string `json:"nickname" validate:"required,min=2,max=100"`
	Birth    string `json:"birth" validate:"required,datetime=2006-01-02"`
	Gender   string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	IsAgree  bool   `json:"isAgree"`
}

// LoginResponse is returned by every flow that establishes a session.
type LoginResponse struct {
	AccessToken  string        `json:"accessToken"`
	User         UserInfo      `json:"user"`
	LatestRecord *LatestRecord `json:"latestRecord"`
}

// DeepLinkResponse routes the mobile app into the right screen after
// the Kakao callback: login for existing users, signup for new ones.
type DeepLinkResponse struct {
	IsNewUser bool   `json:"isNewUser"`
	DeepLink  string `json:"deepLink"`
}

// AuthService coordinates signup, login, logout and the Kakao OAuth flow.
type AuthService struct {
	userRepo       repositories.UserRepository
	users          *UserService
	tokens         *TokenService
	kakao          KakaoClient
	images         storage.ImageStorage
	events         EventPublisher
	deepLinkScheme string
}

// NewAuthService creates a new AuthService. events may be nil, in which
// case lifecycle events are skipped.
func NewAuthService(
	userRepo repositories.UserRepository,
	users *UserService,
	tokens *TokenService,
	kakao KakaoClient,
	images storage.ImageStorage,
	events EventPublisher,
	deepLinkScheme string,
) *AuthService {
	return &AuthService{
		userRepo:       userRepo,
		users:          users,
		tokens:         tokens,
		kakao:          kakao,
		images:         images,
		events:         events,
		deepLinkScheme: deepLinkScheme,
	}
}

// Signup registers a local account. The uploaded profile image is
// optional; without one the default image URL is assigned. The unique
// indexes on email and nickname are the real guard against concurrent
// duplicate signups; the existence checks here are the fast path.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest, profileImage *multipart.FileHeader) error {
	if err := s.checkDuplicates(req.Email, req.Nickname); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// Upload before the insert so a failed upload never leaves a user
	// row pointing at a missing image.
	profileImageURL := s.images.DefaultProfileImageURL()
	if profileImage != nil && profileImage.Size > 0 {
		profileImageURL, err = s.images.UploadProfileImage(ctx, profileImage)
		if err != nil {
			return fmt.Errorf("failed to upload profile image: %w", err)
		}
	}

	birth, err := time.Parse("2006-01-02", req.Birth)
	if err != nil {
		return fmt.Errorf("invalid birth date: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		Password:     string(hashedPassword),
		Nickname:     req.Nickname,
		Birth:        birth,
		Gender:       models.Gender(req.Gender),
		ProfileImage: profileImageURL,
		IsAgree:      req.IsAgree,
	}
	if err := s.createUser(user); err != nil {
		return err
	}

	log.Printf("new user: userID=%s", user.ID)
	s.publish("user.registered", map[string]interface{}{
		"userID": user.ID,
		"social": false,
	})
	return nil
}

// Login authenticates a local account and establishes a session. It
// returns the login response and the refresh token for the cookie.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, string, error) {
	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		return nil, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	log.Printf("user login: userID=%s", user.ID)
	return s.issueTokens(ctx, user)
}

// Logout tears down a session best effort. Both tokens are optional and
// a second call with nothing left to revoke succeeds as well.
func (s *AuthService) Logout(ctx context.Context, refreshToken, accessToken string) {
	if refreshToken != "" {
		if email, err := s.tokens.EmailFromToken(refreshToken); err == nil {
			if err := s.tokens.DeleteRefreshToken(ctx, email); err != nil {
				log.Printf("Warning: failed to delete refresh token: %v", err)
			}
		}
	}

	if accessToken != "" {
		if err := s.tokens.BlacklistAccessToken(ctx, accessToken, "logout"); err != nil {
			log.Printf("Warning: failed to blacklist access token: %v", err)
		}
	}
}

// ProcessKakaoLogin handles the Kakao authorization callback. Existing
// users get a logged-in deep link carrying a one-time login token; new
// users get a signup deep link carrying a temp token with their
// provisional profile. The refresh token is non-empty only on the
// existing-user branch.
func (s *AuthService) ProcessKakaoLogin(ctx context.Context, code string) (*DeepLinkResponse, string, error) {
	kakaoToken, err := s.kakao.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", err
	}
	profile, err := s.kakao.FetchProfile(ctx, kakaoToken)
	if err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByEmail(profile.KakaoAccount.Email)
	switch {
	case err == nil:
		// Existing user: log in without a password check and hand the
		// app a one-time token to redeem the login response with.
		loginResponse, refreshToken, err := s.issueTokens(ctx, user)
		if err != nil {
			return nil, "", err
		}

		loginToken := uuid.New().String()
		payload, err := json.Marshal(loginResponse)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal login response: %w", err)
		}
		if err := s.tokens.store.SaveLoginPayload(ctx, loginToken, payload, loginTokenTTL); err != nil {
			return nil, "", err
		}

		log.Printf("kakao login success: userID=%s", user.ID)
		return &DeepLinkResponse{
			IsNewUser: false,
			DeepLink:  fmt.Sprintf("%s://auth/oauth/kakao?status=login&login_token=%s", s.deepLinkScheme, loginToken),
		}, refreshToken, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		// New user: additional details are collected in-app first.
		tempUser := s.buildTempUser(profile)
		tempToken, err := s.tokens.CreateTempSignupToken(tempUser, tempSignupTokenTTL)
		if err != nil {
			return nil, "", err
		}

		return &DeepLinkResponse{
			IsNewUser: true,
			DeepLink:  fmt.Sprintf("%s://auth/oauth/kakao?status=signup&temp_token=%s", s.deepLinkScheme, tempToken),
		}, "", nil

	default:
		return nil, "", err
	}
}

// buildTempUser resolves the provisional profile from Kakao consent
// state. The default image is used when image consent was not granted
// or when the provider image is itself Kakao's generic default.
func (s *AuthService) buildTempUser(profile *KakaoProfile) TempUser {
	account := profile.KakaoAccount

	profileImage := s.images.DefaultProfileImageURL()
	if !account.ProfileImageNeedsAgreement && !account.Profile.IsDefaultImage {
		profileImage = account.Profile.ProfileImageURL
	}

	return TempUser{
		Email:        account.Email,
		Nickname:     account.Profile.Nickname,
		KakaoID:      profile.KakaoUserID(),
		ProfileImage: profileImage,
		IsSocial:     true,
	}
}

// CompleteKakaoSignup persists a new social account and logs it in. The
// temp signup token proves the identity fields came from the Kakao
// callback; without a valid token no account is created.
func (s *AuthService) CompleteKakaoSignup(ctx context.Context, tempToken string, req KakaoSignupRequest) (*LoginResponse, string, error) {
	tempUser, err := s.tokens.ParseTempSignupToken(tempToken)
	if err != nil {
		return nil, "", err
	}

	if err := s.checkDuplicates(tempUser.Email, req.Nickname); err != nil {
		return nil, "", err
	}

	birth, err := time.Parse("2006-01-02", req.Birth)
	if err != nil {
		return nil, "", fmt.Errorf("invalid birth date: %w", err)
	}

	profileImage := tempUser.ProfileImage
	if profileImage == "" {
		profileImage = s.images.DefaultProfileImageURL()
	}

	user := &models.User{
		Email:        tempUser.Email,
		Nickname:     req.Nickname,
		Birth:        birth,
		Gender:       models.Gender(req.Gender),
		ProfileImage: profileImage,
		IsSocial:     true,
		KakaoID:      tempUser.KakaoID,
		IsAgree:      req.IsAgree,
	}
	if err := s.createUser(user); err != nil {
		return nil, "", err
	}

	log.Printf("new user(kakao): userID=%s", user.ID)
	s.publish("user.registered", map[string]interface{}{
		"userID": user.ID,
		"social": true,
	})

	return s.issueTokens(ctx, user)
}

// RedeemLoginToken exchanges a one-time Kakao login token for the
// cached login response. The token is consumed on first use.
func (s *AuthService) RedeemLoginToken(ctx context.Context, loginToken string) (*LoginResponse, error) {
	payload, err := s.tokens.store.TakeLoginPayload(ctx, loginToken)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, ErrLoginTokenNotFound
	}

	var response LoginResponse
	if err := json.Unmarshal(payload, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal login response: %w", err)
	}
	return &response, nil
}

// issueTokens runs the shared session-establishment sequence: mint the
// access and refresh JWTs, persist the refresh token and assemble the
// login response.
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*LoginResponse, string, error) {
	accessToken, err := s.tokens.CreateAccessToken(user.Email, user.ID)
	if err != nil {
		return nil, "", err
	}
	refreshToken, err := s.tokens.CreateRefreshToken(user.Email, user.ID)
	if err != nil {
		return nil, "", err
	}
	if err := s.tokens.SaveRefreshToken(ctx, user.Email, refreshToken); err != nil {
		return nil, "", err
	}

	latestRecord, err := s.users.LatestRecordOf(user.ID)
	if err != nil {
		return nil, "", err
	}

	return &LoginResponse{
		AccessToken:  accessToken,
		User:         s.users.UserInfoOf(user),
		LatestRecord: latestRecord,
	}, refreshToken, nil
}

// checkDuplicates is the advisory fast path of the duplicate guard.
func (s *AuthService) checkDuplicates(email, nickname string) error {
	if exists, err := s.userRepo.ExistsByEmail(email); err != nil {
		return err
	} else if exists {
		return ErrEmailAlreadyExists
	}
	if exists, err := s.userRepo.ExistsByNickname(nickname); err != nil {
		return err
	} else if exists {
		return ErrNicknameAlreadyExists
	}
	return nil
}

// createUser inserts a user and maps a unique-index violation from a
// concurrent duplicate signup back to the precise duplicate error.
func (s *AuthService) createUser(user *models.User) error {
	err := s.userRepo.Create(user)
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		if exists, probeErr := s.userRepo.ExistsByEmail(user.Email); probeErr == nil && exists {
			return ErrEmailAlreadyExists
		}
		return ErrNicknameAlreadyExists
	}
	return err
}

func (s *AuthService) publish(event string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}
