// Package settings keeps the user's API key and theme in local storage.
package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/orgball2608/contentflow/internal/domain"
	"github.com/orgball2608/contentflow/internal/repositories/kv"
	"github.com/orgball2608/contentflow/pkg/errors"
	"go.uber.org/fx"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

//go:generate go run go.uber.org/mock/mockgen -source=settings.go -destination=mocks/mock.go
type Store interface {
	APIKey(ctx context.Context) (string, error)
	// SetAPIKey stores key; an empty key removes it.
	SetAPIKey(ctx context.Context, key string) error
	Theme(ctx context.Context) (Theme, error)
	SetTheme(ctx context.Context, theme Theme) error
}

type StoreImpl struct {
	storage kv.Repository
}

var _ Store = (*StoreImpl)(nil)

func New(storage kv.Repository) *StoreImpl {
	return &StoreImpl{storage: storage}
}

var Module = fx.Module("settings",
	fx.Provide(
		fx.Annotate(New, fx.As(new(Store))),
	),
)

func (s *StoreImpl) APIKey(ctx context.Context) (string, error) {
	key, err := s.storage.Get(ctx, domain.APIKeyKey)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	return key, err
}

func (s *StoreImpl) SetAPIKey(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return s.storage.Delete(ctx, domain.APIKeyKey)
	}
	return s.storage.Set(ctx, domain.APIKeyKey, key)
}

func (s *StoreImpl) Theme(ctx context.Context) (Theme, error) {
	v, err := s.storage.Get(ctx, domain.ThemeKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
		return ThemeLight, nil
	case err != nil:
		return ThemeLight, err
	case Theme(v) == ThemeDark:
		return ThemeDark, nil
	}
	return ThemeLight, nil
}

func (s *StoreImpl) SetTheme(ctx context.Context, theme Theme) error {
	if theme != ThemeLight && theme != ThemeDark {
		return errors.WrapWithCode(errors.ErrInvalidInput, "invalid_theme", fmt.Sprintf("unknown theme %q", theme))
	}
	return s.storage.Set(ctx, domain.ThemeKey, string(theme))
}

// MaskKey hides all but the last four characters of key.
func MaskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
