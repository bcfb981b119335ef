package oauth

import (
	"context"
	"fmt"

	"github.com/oguzhan/teamboard-api/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

type GoogleProvider struct {
	config *oauth2.Config
}

func NewGoogleProvider(cfg config.OAuthConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

func (p *GoogleProvider) GetConsentURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

func (p *GoogleProvider) ExchangeCode(ctx context.Context, code string) (*UserInfo, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	var gUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := getJSON(p.config.Client(ctx, token), "https://www.googleapis.com/oauth2/v2/userinfo", &gUser); err != nil {
		return nil, err
	}

	if gUser.Email == "" {
		return nil, fmt.Errorf("google account has no accessible email")
	}

	return &UserInfo{
		ID:       gUser.ID,
		Email:    gUser.Email,
		Provider: "google",
	}, nil
}
