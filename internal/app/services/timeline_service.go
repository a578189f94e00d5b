package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/yigit/hobbysphere/internal/app/models"
	"github.com/yigit/hobbysphere/internal/app/repositories"
	"github.com/yigit/hobbysphere/internal/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// TimelineService defines the interface for the merged timeline
type TimelineService interface {
	Build(ctx context.Context, filter models.TimelineFilter) ([]models.TimelineItem, error)
}

// timelineServiceImpl implements TimelineService. It owns no state: every
// build reads fresh snapshots from the repositories.
type timelineServiceImpl struct {
	eventRepo  *repositories.EventRepository
	surveyRepo *repositories.SurveyRepository
	postRepo   *repositories.PostRepository
	logger     zerolog.Logger
}

// NewTimelineService creates a new TimelineService
func NewTimelineService(repos *repositories.Repositories, logger zerolog.Logger) TimelineService {
	return &timelineServiceImpl{
		eventRepo:  repos.EventRepository,
		surveyRepo: repos.SurveyRepository,
		postRepo:   repos.PostRepository,
		logger:     logger,
	}
}

// Build loads the three collections concurrently and merges them newest first
func (s *timelineServiceImpl) Build(ctx context.Context, filter models.TimelineFilter) ([]models.TimelineItem, error) {
	if filter == "" {
		filter = models.TimelineFilterAll
	}

	var (
		events  []models.Event
		surveys []models.Survey
		posts   []models.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		events, err = s.eventRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		surveys, err = s.surveyRepo.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = s.postRepo.List(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to load timeline sources")
		return nil, fmt.Errorf("error loading timeline: %w", err)
	}

	items := models.BuildTimeline(events, surveys, posts, filter)
	metrics.ObserveTimeline(string(filter), len(items))

	s.logger.Debug().
		Str("filter", string(filter)).
		Int("events", len(events)).
		Int("surveys", len(surveys)).
		Int("posts", len(posts)).
		Int("items", len(items)).
		Msg("Timeline built")

	return items, nil
}
