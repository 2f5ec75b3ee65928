package service

import (
	"context"
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/monitoring"

	"gorm.io/gorm"
)

// EngagementService handles comments, likes and ratings. Likes and ratings
// update the course aggregates in the transaction that writes them.
type EngagementService struct {
	DB             *gorm.DB
	EngagementRepo *repository.EngagementRepository
	Access         *AccessService
	Aggregates     *AggregateService
	Cache          CourseCache
}

func NewEngagementService(db *gorm.DB, engagementRepo *repository.EngagementRepository, access *AccessService, aggregates *AggregateService, cache CourseCache) *EngagementService {
	return &EngagementService{
		DB:             db,
		EngagementRepo: engagementRepo,
		Access:         access,
		Aggregates:     aggregates,
		Cache:          cache,
	}
}

func (s *EngagementService) ListComments(actor Actor, courseID uint) ([]model.CourseComment, error) {
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	return s.EngagementRepo.ListComments(courseID)
}

func (s *EngagementService) AddComment(ctx context.Context, actor Actor, courseID uint, content string) (*model.CourseComment, error) {
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, util.NewValidationError("content", "this field is required")
	}
	c := &model.CourseComment{CourseID: courseID, UserID: actor.ID, Content: content}
	if err := s.EngagementRepo.CreateComment(c); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, courseID)
	return c, nil
}

func (s *EngagementService) ownComment(actor Actor, courseID, commentID uint) (*model.CourseComment, error) {
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	c, err := s.EngagementRepo.FindComment(courseID, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCommentNotFound
		}
		return nil, err
	}
	if c.UserID != actor.ID {
		return nil, util.ErrForbidden
	}
	return c, nil
}

// EditComment changes the content of the caller's own comment.
func (s *EngagementService) EditComment(ctx context.Context, actor Actor, courseID, commentID uint, content string) (*model.CourseComment, error) {
	if content == "" {
		return nil, util.NewValidationError("content", "this field is required")
	}
	c, err := s.ownComment(actor, courseID, commentID)
	if err != nil {
		return nil, err
	}
	c.Content = content
	if err := s.EngagementRepo.UpdateCommentContent(c); err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, courseID)
	return c, nil
}

func (s *EngagementService) DeleteComment(ctx context.Context, actor Actor, courseID, commentID uint) error {
	c, err := s.ownComment(actor, courseID, commentID)
	if err != nil {
		return err
	}
	if err := s.EngagementRepo.DeleteComment(c.ID); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, courseID)
	return nil
}

func (s *EngagementService) Like(ctx context.Context, actor Actor, courseID uint) (*model.CourseLike, error) {
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	like := &model.CourseLike{CourseID: courseID, UserID: actor.ID}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.EngagementRepo.WithTx(tx).CreateLike(like); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAlreadyLiked
			}
			return err
		}
		return s.Aggregates.LikeAdded(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	monitoring.CourseLikes.WithLabelValues("added").Inc()
	s.Cache.Invalidate(ctx, courseID)
	return like, nil
}

// Unlike removes the caller's like. The row delete guards the counter: a
// second concurrent unlike finds nothing to remove.
func (s *EngagementService) Unlike(ctx context.Context, actor Actor, courseID uint) error {
	if err := s.Access.CanView(actor, courseID); err != nil {
		return err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.EngagementRepo.WithTx(tx)
		like, err := repo.LockLike(courseID, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrLikeNotFound
			}
			return err
		}
		removed, err := repo.DeleteLike(like.ID)
		if err != nil {
			return err
		}
		if !removed {
			return util.ErrLikeNotFound
		}
		return s.Aggregates.LikeRemoved(tx, courseID)
	})
	if err != nil {
		return err
	}
	monitoring.CourseLikes.WithLabelValues("removed").Inc()
	s.Cache.Invalidate(ctx, courseID)
	return nil
}

func validateRating(rating int) error {
	if rating < model.MinRating || rating > model.MaxRating {
		return util.NewValidationError("rating", "must be between 1 and 5")
	}
	return nil
}

func (s *EngagementService) Rate(ctx context.Context, actor Actor, courseID uint, rating int) (*model.CourseRating, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	rt := &model.CourseRating{CourseID: courseID, UserID: actor.ID, Rating: rating}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.EngagementRepo.WithTx(tx).CreateRating(rt); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrAlreadyRated
			}
			return err
		}
		return s.Aggregates.RatingAdded(tx, courseID, rating)
	})
	if err != nil {
		return nil, err
	}
	monitoring.CourseRatings.WithLabelValues("added").Inc()
	s.Cache.Invalidate(ctx, courseID)
	return rt, nil
}

// ChangeRating replaces the caller's rating. The previous value is read under
// the row lock before the write.
func (s *EngagementService) ChangeRating(ctx context.Context, actor Actor, courseID uint, rating int) (*model.CourseRating, error) {
	if err := validateRating(rating); err != nil {
		return nil, err
	}
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	var rt *model.CourseRating
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.EngagementRepo.WithTx(tx)
		var err error
		rt, err = repo.LockRating(courseID, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrRatingNotFound
			}
			return err
		}
		old := rt.Rating
		rt.Rating = rating
		if err := repo.UpdateRatingValue(rt); err != nil {
			return err
		}
		return s.Aggregates.RatingChanged(tx, courseID, old, rating)
	})
	if err != nil {
		return nil, err
	}
	monitoring.CourseRatings.WithLabelValues("changed").Inc()
	s.Cache.Invalidate(ctx, courseID)
	return rt, nil
}

func (s *EngagementService) Unrate(ctx context.Context, actor Actor, courseID uint) error {
	if err := s.Access.CanView(actor, courseID); err != nil {
		return err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.EngagementRepo.WithTx(tx)
		rt, err := repo.LockRating(courseID, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrRatingNotFound
			}
			return err
		}
		removed, err := repo.DeleteRating(rt.ID)
		if err != nil {
			return err
		}
		if !removed {
			return util.ErrRatingNotFound
		}
		return s.Aggregates.RatingRemoved(tx, courseID, rt.Rating)
	})
	if err != nil {
		return err
	}
	monitoring.CourseRatings.WithLabelValues("removed").Inc()
	s.Cache.Invalidate(ctx, courseID)
	return nil
}
