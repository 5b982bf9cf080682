package repositories

import (
	"context"

	"github.com/SscSPs/prima_nota/internal/core/domain"
)

// PreferencesRepository stores per-azienda account bindings.
type PreferencesRepository interface {
	// FindPreferences returns apperrors.ErrNotFound when the azienda has none.
	FindPreferences(ctx context.Context, aziendaID string) (*domain.Preferences, error)

	// SavePreferences inserts or replaces the azienda's preferences.
	SavePreferences(ctx context.Context, prefs domain.Preferences) error
}
