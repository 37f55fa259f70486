package roles

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
}

// Service serves role definitions, reading through the Redis cache.
type Service struct {
	repo   RepositoryPort
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService builds Service instance. cache and logger may be nil.
func NewService(repo RepositoryPort, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// ListRoles returns all roles.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	if list, ok, err := s.cache.Get(ctx); err != nil {
		s.warn("roles cache get", err)
	} else if ok {
		return list, nil
	}

	v, err, _ := s.group.Do(cacheKey, func() (interface{}, error) {
		list, err := s.repo.ListRoles(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.cache.Set(ctx, list); err != nil {
			s.warn("roles cache set", err)
		}
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Role), nil
}

// GetByName resolves a role by name.
func (s *Service) GetByName(ctx context.Context, name string) (Role, error) {
	list, err := s.ListRoles(ctx)
	if err != nil {
		return Role{}, err
	}
	for _, role := range list {
		if role.Name == name {
			return role, nil
		}
	}
	return Role{}, ErrNotFound
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}
