package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/kinsync/internal/common"
	"github.com/dmitrijs2005/kinsync/internal/server/repositories/repomanager"
	"github.com/patrickmn/go-cache"
)

// MembershipService answers "may this user act in this workspace". Positive
// answers are cached for the configured TTL; refusals are not cached.
type MembershipService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       *cache.Cache
	ttl         time.Duration
}

func NewMembershipService(db *sql.DB, m repomanager.RepositoryManager, ttl time.Duration) *MembershipService {
	return &MembershipService{
		db:          db,
		repomanager: m,
		cache:       cache.New(ttl, 2*ttl),
		ttl:         ttl,
	}
}

// Check returns nil for members, common.ErrForbidden for everyone else.
// A non-positive TTL disables caching.
func (s *MembershipService) Check(ctx context.Context, workspaceID, userID string) error {
	key := workspaceID + "|" + userID
	if _, ok := s.cache.Get(key); ok {
		return nil
	}

	m, err := s.repomanager.Members(s.db).Get(ctx, workspaceID, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrForbidden
		}
		return fmt.Errorf("%w: %v", common.ErrInternal, err)
	}

	if s.ttl > 0 {
		s.cache.Set(key, m.Role, cache.DefaultExpiration)
	}
	return nil
}
