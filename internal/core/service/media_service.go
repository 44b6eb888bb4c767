package service

import (
	"context"
	"fmt"
	"path"

	"github.com/rs/zerolog"

	"github.com/rentaride/rental-system/internal/core/ports"
)

// MediaDedup abstracts the idempotency store (Redis) guarding completion
// callbacks against replays.
type MediaDedup interface {
	IsProcessed(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

// MediaService consumes compression job descriptors on the worker side of
// the media boundary. Compression itself happens out of process; this
// service owns only the idempotent "update media URL" callbacks that follow.
type MediaService struct {
	fleet    ports.FleetService
	identity ports.IdentityService
	dedup    MediaDedup
	log      zerolog.Logger
}

// NewMediaService returns a ports.MediaProcessor implementation.
func NewMediaService(
	fleet ports.FleetService,
	identity ports.IdentityService,
	dedup MediaDedup,
	log zerolog.Logger,
) *MediaService {
	return &MediaService{
		fleet:    fleet,
		identity: identity,
		dedup:    dedup,
		log:      log,
	}
}

// Process rewrites each file's media reference to its compressed
// destination. Jobs may be redelivered; the dedup store and the no-op
// semantics of the callbacks keep replays harmless.
func (s *MediaService) Process(ctx context.Context, job ports.MediaJob) error {
	for _, file := range job.Files {
		key := dedupKey(job, file)

		done, err := s.dedup.IsProcessed(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("file", file.Path).Msg("media dedup check failed, processing anyway")
		} else if done {
			s.log.Debug().Str("file", file.Path).Msg("media callback already applied, skipped")
			continue
		}

		compressedURL := path.Join(job.DestinationPath, path.Base(file.Path))

		switch job.Category {
		case ports.MediaCategoryCar:
			err = s.fleet.UpdateCarMedia(ctx, job.TargetID, file.Path, compressedURL)
		case ports.MediaCategoryProfile:
			err = s.identity.UpdateProfileMedia(ctx, job.TargetID, compressedURL)
		default:
			return fmt.Errorf("media: unknown category %q", job.Category)
		}
		if err != nil {
			return fmt.Errorf("media: update %s %s: %w", job.Category, job.TargetID, err)
		}

		if markErr := s.dedup.Mark(ctx, key); markErr != nil {
			s.log.Warn().Err(markErr).Str("file", file.Path).Msg("failed to set media dedup key")
		}

		s.log.Info().
			Str("category", string(job.Category)).
			Str("target_id", job.TargetID).
			Str("url", compressedURL).
			Msg("media reference updated")
	}
	return nil
}

func dedupKey(job ports.MediaJob, file ports.MediaFile) string {
	return fmt.Sprintf("%s:%s:%s", job.Category, job.TargetID, file.Path)
}
