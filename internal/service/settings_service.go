package service

import (
	"context"
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/crmkit/department-service/internal/domain"
	"github.com/crmkit/department-service/internal/persistence"
	"github.com/crmkit/department-service/internal/repository"
	apperrors "github.com/crmkit/department-service/pkg/util/errorutil"
)

const settingsCachePrefix = "settings:"

// SettingsService serves read-only projections of the configuration document,
// with a redis read-through cache in front of the store. Cache failures fall
// back to the store silently.
type SettingsService struct {
	settings repository.SettingsRepository
	cache    *persistence.Redis
	logger   *zap.Logger
	ttl      time.Duration
}

// NewSettingsService creates the service.
func NewSettingsService(settings repository.SettingsRepository, cache *persistence.Redis, logger *zap.Logger, ttl time.Duration) *SettingsService {
	return &SettingsService{settings: settings, cache: cache, logger: logger, ttl: ttl}
}

// Get returns the full settings document.
func (s *SettingsService) Get(ctx context.Context) (*domain.Settings, error) {
	var cached domain.Settings
	if s.readCache(ctx, "full", &cached) {
		return &cached, nil
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.writeCache(ctx, "full", settings)
	return settings, nil
}

// GetLists returns the lists and listsFields projections.
func (s *SettingsService) GetLists(ctx context.Context) (*domain.Settings, error) {
	var cached domain.Settings
	if s.readCache(ctx, "lists", &cached) {
		return &cached, nil
	}
	settings, err := s.settings.GetLists(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.writeCache(ctx, "lists", settings)
	return settings, nil
}

// GetUsersRoles returns the usersRoles projection.
func (s *SettingsService) GetUsersRoles(ctx context.Context) ([]bson.M, error) {
	var cached []bson.M
	if s.readCache(ctx, "usersRoles", &cached) {
		return cached, nil
	}
	roles, err := s.settings.GetUsersRoles(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.writeCache(ctx, "usersRoles", roles)
	return roles, nil
}

func (s *SettingsService) readCache(ctx context.Context, key string, out any) bool {
	if s.cache == nil || s.cache.Client == nil {
		return false
	}
	raw, err := s.cache.Client.Get(ctx, settingsCachePrefix+key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		s.logger.Warn("decode settings cache", zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

func (s *SettingsService) writeCache(ctx context.Context, key string, value any) {
	if s.cache == nil || s.cache.Client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Client.Set(ctx, settingsCachePrefix+key, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("write settings cache", zap.String("key", key), zap.Error(err))
	}
}
