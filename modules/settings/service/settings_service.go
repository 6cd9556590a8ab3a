package service

import (
	"context"
	stderrors "errors"
	"time"

	"calendar-service/core/cache"
	"calendar-service/core/constants"
	"calendar-service/core/errors"
	"calendar-service/core/logger"
	"calendar-service/modules/settings/dto"
	"calendar-service/modules/settings/entity"
	"calendar-service/modules/settings/mapper"
	"calendar-service/modules/settings/repository"
)

type SettingsService struct {
	repo  repository.SettingsRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewSettingsService returns a service reading through c. A nil cache
// disables caching.
func NewSettingsService(repo repository.SettingsRepository, c cache.Cache, ttl time.Duration) *SettingsService {
	return &SettingsService{repo: repo, cache: c, ttl: ttl}
}

func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*dto.SettingsResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	key := constants.RedisKeySettings + userID
	if s.cache != nil {
		var cached dto.SettingsResponse
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return &cached, nil
		}
		if !stderrors.Is(err, cache.ErrMiss) {
			logger.Warn("SettingsService:GetSettings:Cache", "user_id", userID, "error", err.Error())
		}
	}

	settings, appErr := s.load(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}
	resp := mapper.ToSettingsResponse(settings)

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, resp, s.ttl); err != nil {
			logger.Warn("SettingsService:GetSettings:CacheSet", "user_id", userID, "error", err.Error())
		}
	}
	return resp, nil
}

// UpdateSettings merges the present fields into the stored settings.
func (s *SettingsService) UpdateSettings(ctx context.Context, userID string, req *dto.SettingsRequest) (*dto.SettingsResponse, *errors.AppError) {
	ctx, cancel := context.WithTimeout(ctx, constants.DefaultRequestTimeout)
	defer cancel()

	if req.FirstDayOfWeek != nil && (*req.FirstDayOfWeek < 0 || *req.FirstDayOfWeek > 6) {
		return nil, errors.NewAppError(errors.ErrInvalidInput, "firstDayOfWeek must be between 0 and 6", nil)
	}

	settings, appErr := s.load(ctx, userID)
	if appErr != nil {
		return nil, appErr
	}
	mapper.ApplyRequest(req, settings)

	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, errors.NewAppError(errors.ErrUpdateFailed, "failed to save settings", err)
	}
	if s.cache != nil {
		if err := s.cache.Del(ctx, constants.RedisKeySettings+userID); err != nil {
			logger.Warn("SettingsService:UpdateSettings:CacheDel", "user_id", userID, "error", err.Error())
		}
	}

	logger.Info("SettingsService:UpdateSettings", "user_id", userID)
	return mapper.ToSettingsResponse(settings), nil
}

func (s *SettingsService) load(ctx context.Context, userID string) (*entity.Settings, *errors.AppError) {
	settings, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, errors.NewAppError(errors.ErrGetFailed, "failed to load settings", err)
	}
	if settings == nil {
		settings = entity.Default(userID)
	}
	return settings, nil
}
