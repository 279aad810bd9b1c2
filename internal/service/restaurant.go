package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/panaghia/restaurant/internal/events"
	"github.com/panaghia/restaurant/internal/models"
	"github.com/panaghia/restaurant/internal/repo"
	"github.com/panaghia/restaurant/pkg/transport"
)

const maxReviewText = 1000

type RestaurantService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

// Info returns the stored restaurant row, or the built-in defaults when an
// admin has not saved one yet.
func (s *RestaurantService) Info(ctx context.Context) (*transport.RestaurantInfo, error) {
	info, err := s.Repo.RestaurantInfo(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		def := models.DefaultRestaurantInfo()
		info = &def
	} else if err != nil {
		return nil, err
	}
	dto := info.DTO()
	return &dto, nil
}

func (s *RestaurantService) UpdateInfo(ctx context.Context, in transport.RestaurantInfoInput) (*transport.RestaurantInfo, error) {
	info, err := s.Repo.RestaurantInfo(ctx)
	if errors.Is(err, repo.ErrNotFound) {
		def := models.DefaultRestaurantInfo()
		info = &def
	} else if err != nil {
		return nil, err
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return nil, fmt.Errorf("%w: name must not be empty", ErrValidation)
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&info.Name, in.Name)
	set(&info.Tagline, in.Tagline)
	set(&info.Phone, in.Phone)
	set(&info.Email, in.Email)
	set(&info.Address, in.Address)
	set(&info.HeroTitle, in.HeroTitle)
	set(&info.HeroSubtitle, in.HeroSubtitle)
	set(&info.HeroImage, in.HeroImage)
	if in.Schedule != nil {
		info.ScheduleWeekdays = in.Schedule.Weekdays
		info.ScheduleWeekend = in.Schedule.Weekend
	}

	if err := s.Repo.SaveRestaurantInfo(ctx, info); err != nil {
		return nil, err
	}
	dto := info.DTO()
	return &dto, nil
}

// Reviews lists reviews; approved nil means all of them.
func (s *RestaurantService) Reviews(ctx context.Context, approved *bool) (*transport.ReviewList, error) {
	rows, err := s.Repo.ListReviews(ctx, approved)
	if err != nil {
		return nil, err
	}
	out := &transport.ReviewList{Reviews: make([]transport.Review, 0, len(rows))}
	for _, r := range rows {
		out.Reviews = append(out.Reviews, r.DTO())
	}
	out.Total = len(out.Reviews)
	return out, nil
}

// SubmitReview stores a review as approved and refreshes the rating summary.
func (s *RestaurantService) SubmitReview(ctx context.Context, in transport.ReviewInput) (*transport.Review, error) {
	name := strings.TrimSpace(in.Name)
	text := strings.TrimSpace(in.Text)
	switch {
	case name == "":
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	case text == "":
		return nil, fmt.Errorf("%w: text required", ErrValidation)
	case len([]rune(text)) > maxReviewText:
		return nil, fmt.Errorf("%w: text longer than %d characters", ErrValidation, maxReviewText)
	case in.Rating < 1 || in.Rating > 5:
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	rv := models.Review{Name: name, Rating: in.Rating, Text: text, IsApproved: true}
	if err := s.Repo.CreateReview(ctx, &rv, models.DefaultRestaurantInfo()); err != nil {
		return nil, err
	}
	publish(ctx, s.Events, events.TopicReviews, rv.ID, events.ReviewEvent{
		Type:     events.ReviewCreated,
		ReviewID: rv.ID,
		Rating:   rv.Rating,
		At:       time.Now().UTC(),
	})
	dto := rv.DTO()
	return &dto, nil
}

func (s *RestaurantService) SetReviewApproved(ctx context.Context, id string, approved bool) error {
	return mapRepo(s.Repo.SetReviewApproved(ctx, id, approved, models.DefaultRestaurantInfo()), "review")
}

func (s *RestaurantService) DeleteReview(ctx context.Context, id string) error {
	return mapRepo(s.Repo.DeleteReview(ctx, id, models.DefaultRestaurantInfo()), "review")
}
