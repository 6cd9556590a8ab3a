package repository

import (
	"context"

	"calendar-service/modules/settings/entity"
)

type SettingsRepository interface {
	// Get returns nil, nil when the user has no stored settings.
	Get(ctx context.Context, userID string) (*entity.Settings, error)
	Upsert(ctx context.Context, settings *entity.Settings) error
}
