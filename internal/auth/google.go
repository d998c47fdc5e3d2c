// Пакет auth — вход через Google (OpenID Connect).
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/s/courseMarket/internal/models"
)

// ErrNoIDToken — в ответе токен-эндпоинта нет id_token.
var ErrNoIDToken = errors.New("в ответе провайдера нет id_token")

// Provider — Google OIDC: ссылка на вход и обмен кода на личность.
type Provider struct {
	oauth    oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// NewGoogle загружает discovery-документ issuer'а и готовит oauth2-конфиг.
func NewGoogle(ctx context.Context, issuer, clientID, clientSecret, redirectURL string) (*Provider, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("инициализация OIDC-провайдера %s: %w", issuer, err)
	}

	return &Provider{
		oauth: oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: provider.Verifier(&oidc.Config{ClientID: clientID}),
	}, nil
}

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange меняет код на токены, проверяет id_token и достаёт профиль.
// Роль здесь не известна, её подставляет вызывающий код.
func (p *Provider) Exchange(ctx context.Context, code string) (models.Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return models.Identity{}, fmt.Errorf("обмен кода на токен: %w", err)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return models.Identity{}, ErrNoIDToken
	}

	idToken, err := p.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return models.Identity{}, fmt.Errorf("проверка id_token: %w", err)
	}

	var c claims
	if err := idToken.Claims(&c); err != nil {
		return models.Identity{}, fmt.Errorf("разбор claims: %w", err)
	}
	return c.identity()
}

type claims struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (c claims) identity() (models.Identity, error) {
	email := strings.TrimSpace(c.Email)
	if email == "" {
		return models.Identity{}, errors.New("провайдер не вернул email")
	}
	if c.EmailVerified != nil && !*c.EmailVerified {
		return models.Identity{}, fmt.Errorf("email %s не подтверждён", email)
	}

	name := c.Name
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return models.Identity{
		Email:       strings.ToLower(email),
		DisplayName: name,
		PhotoURL:    c.Picture,
	}, nil
}
