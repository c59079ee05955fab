package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

const kakaoUserInfoURL = "https://kapi.kakao.com/v2/user/me"

var kakaoEndpoint = oauth2.Endpoint{
	AuthURL:  "https://kauth.kakao.com/oauth/authorize",
	TokenURL: "https://kauth.kakao.com/oauth/token",
}

// KakaoProfile is the subset of the Kakao user-info response we consume.
type KakaoProfile struct {
	ID           int64 `json:"id"`
	KakaoAccount struct {
		Email                      string `json:"email"`
		ProfileImageNeedsAgreement bool   `json:"profile_image_needs_agreement"`
		Profile                    struct {
			Nickname        string `json:"nickname"`
			ProfileImageURL string `json:"profile_image_url"`
			IsDefaultImage  bool   `json:"is_default_image"`
		} `json:"profile"`
	} `json:"kakao_account"`
}

// KakaoID returns the provider id as a string for storage.
func (p *KakaoProfile) KakaoUserID() string {
	return strconv.FormatInt(p.ID, 10)
}

// TempUser is the provisional profile of a Kakao user who has not
// completed signup yet. It travels inside the temp signup token.
type TempUser struct {
	Email        string `json:"email"`
	Nickname     string `json:"nickname"`
	KakaoID      string `json:"kakaoId"`
	ProfileImage string `json:"profileImage"`
	IsSocial     bool   `json:"isSocial"`
}

// KakaoClient exchanges an authorization code for a provider token and
// fetches the associated profile.
type KakaoClient interface {
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	FetchProfile(ctx context.Context, token *oauth2.Token) (*KakaoProfile, error)
}

// KakaoService is the production KakaoClient backed by the Kakao OAuth
// and user-info endpoints.
type KakaoService struct {
	oauth *oauth2.Config
}

// NewKakaoService creates a new KakaoService.
func NewKakaoService(clientID, clientSecret, redirectURL string) *KakaoService {
	return &KakaoService{
		oauth: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     kakaoEndpoint,
		},
	}
}

// ExchangeCode trades the authorization code for a Kakao access token.
func (s *KakaoService) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange kakao authorization code: %w", err)
	}
	return token, nil
}

// FetchProfile requests the user's Kakao profile with the access token.
func (s *KakaoService) FetchProfile(ctx context.Context, token *oauth2.Token) (*KakaoProfile, error) {
	client := s.oauth.Client(ctx, token)

	resp, err := client.Get(kakaoUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch kakao profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("kakao profile request returned status %d", resp.StatusCode)
	}

	var profile KakaoProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode kakao profile: %w", err)
	}
	return &profile, nil
}
