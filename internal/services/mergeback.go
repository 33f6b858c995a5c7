package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/daybook/internal/clients/redis"
	"github.com/yungbote/daybook/internal/notesync"
	"github.com/yungbote/daybook/internal/pkg/logger"
	"github.com/yungbote/daybook/internal/types"
)

// MergeBackService applies note-page edits to the relational store.
type MergeBackService interface {
	Merge(ctx context.Context, kind types.EntityKind, entityID uuid.UUID, note notesync.NoteState) (*notesync.Result, error)
}

type mergeBackService struct {
	log     *logger.Logger
	arbiter *notesync.Arbiter
	cache   *redis.Cache
}

func NewMergeBackService(log *logger.Logger, arbiter *notesync.Arbiter, cache *redis.Cache) MergeBackService {
	return &mergeBackService{log: log.With("service", "MergeBackService"), arbiter: arbiter, cache: cache}
}

func (s *mergeBackService) Merge(ctx context.Context, kind types.EntityKind, entityID uuid.UUID, note notesync.NoteState) (*notesync.Result, error) {
	result, err := s.arbiter.Merge(ctx, kind, entityID, note)
	if err != nil {
		return nil, err
	}
	if len(result.Applied) > 0 || result.Renamed {
		s.cache.Invalidate(ctx, redis.EntityKey(string(kind), entityID.String()))
	}
	return result, nil
}
