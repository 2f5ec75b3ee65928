package service

import (
	"context"
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MinPasswordLength = 8

type UserService struct {
	DB             *gorm.DB
	UserRepo       *repository.UserRepository
	EngagementRepo *repository.EngagementRepository
	Aggregates     *AggregateService
	Cache          CourseCache
}

func NewUserService(db *gorm.DB, userRepo *repository.UserRepository, engagementRepo *repository.EngagementRepository, aggregates *AggregateService, cache CourseCache) *UserService {
	return &UserService{
		DB:             db,
		UserRepo:       userRepo,
		EngagementRepo: engagementRepo,
		Aggregates:     aggregates,
		Cache:          cache,
	}
}

// UserPatch carries the fields a PATCH may change; nil means unchanged.
type UserPatch struct {
	Username  *string
	Email     *string
	Password  *string
	Password2 *string
	Role      *model.UserRole
	IsActive  *bool
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPasswordPair(password, password2 string) error {
	if password != password2 {
		return util.NewValidationError("password", "Password fields didn't match.")
	}
	if len(password) < MinPasswordLength {
		return util.NewValidationError("password", "This password is too short.")
	}
	return nil
}

// ensureSingleAdmin rejects making userID an admin while another admin exists.
// userID is 0 for a user not yet stored.
func ensureSingleAdmin(tx *gorm.DB, userID uint) error {
	count, err := repository.NewUserRepository(tx).CountAdminsExcept(userID)
	if err != nil {
		return err
	}
	if count > 0 {
		return util.ErrAdminExists
	}
	return nil
}

func (s *UserService) checkUnique(repo *repository.UserRepository, userID uint, username, email string) error {
	if username != "" {
		u, err := repo.FindByUsername(username)
		if err == nil && u.ID != userID {
			return util.ErrUsernameTaken
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	if email != "" {
		u, err := repo.FindByEmail(email)
		if err == nil && u.ID != userID {
			return util.ErrEmailRegistered
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
	}
	return nil
}

// Create stores a new user with a hashed password.
func (s *UserService) Create(user *model.User, password, password2 string) error {
	if user.Role == "" {
		user.Role = model.Student
	}
	if !user.Role.Valid() {
		return util.NewValidationError("role", "invalid role")
	}
	if err := checkPasswordPair(password, password2); err != nil {
		return err
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.IsActive = true

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.UserRepo.WithTx(tx)
		if err := s.checkUnique(repo, 0, user.Username, user.Email); err != nil {
			return err
		}
		if user.Role == model.Admin {
			if err := ensureSingleAdmin(tx, 0); err != nil {
				return err
			}
		}
		return repo.Create(user)
	})
	return s.conflictFor(err, 0, user.Role)
}

func (s *UserService) Get(actor Actor, id uint) (*model.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, util.ErrForbidden
	}
	user, err := s.UserRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(page, limit int) ([]model.User, int64, error) {
	return s.UserRepo.List(page, limit)
}

// Update applies a partial change. Users edit their own profile; role and
// activation changes are reserved to the admin.
func (s *UserService) Update(actor Actor, id uint, patch UserPatch) (*model.User, error) {
	if actor.ID != id && !actor.IsAdmin() {
		return nil, util.ErrForbidden
	}
	if (patch.Role != nil || patch.IsActive != nil) && !actor.IsAdmin() {
		return nil, util.ErrForbidden
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, util.NewValidationError("role", "invalid role")
	}

	var user *model.User
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.UserRepo.WithTx(tx)
		var err error
		user, err = repo.FindByID(id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}

		if patch.Username != nil {
			user.Username = *patch.Username
		}
		if patch.Email != nil {
			user.Email = *patch.Email
		}
		if err := s.checkUnique(repo, id, deref(patch.Username), deref(patch.Email)); err != nil {
			return err
		}
		if patch.Password != nil || patch.Password2 != nil {
			if err := checkPasswordPair(deref(patch.Password), deref(patch.Password2)); err != nil {
				return err
			}
			hashed, err := hashPassword(*patch.Password)
			if err != nil {
				return err
			}
			user.Password = hashed
		}
		if patch.Role != nil {
			if *patch.Role == model.Admin && user.Role != model.Admin {
				if err := ensureSingleAdmin(tx, id); err != nil {
					return err
				}
			}
			user.Role = *patch.Role
		}
		if patch.IsActive != nil {
			user.IsActive = *patch.IsActive
		}
		return repo.Update(user)
	})
	if err != nil {
		return nil, s.conflictFor(err, id, deref(patch.Role))
	}
	return user, nil
}

// conflictFor turns a unique-key failure into the conflict it stands for. The
// single-admin index only fires when role is admin; otherwise a concurrent
// writer took the username or email.
func (s *UserService) conflictFor(err error, userID uint, role model.UserRole) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if role == model.Admin {
		if n, cerr := s.UserRepo.CountAdminsExcept(userID); cerr == nil && n > 0 {
			return util.ErrAdminExists
		}
	}
	return util.ErrConflict
}

func (s *UserService) ChangePassword(userID uint, current, password, password2 string) error {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrUserNotFound
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return util.NewValidationError("current_password", "Invalid current password")
	}
	if err := checkPasswordPair(password, password2); err != nil {
		return err
	}
	hashed, err := hashPassword(password)
	if err != nil {
		return err
	}
	return s.UserRepo.UpdatePassword(userID, hashed)
}

// Delete removes the user and everything they own. Likes and ratings are
// withdrawn through the aggregate path first so course counters stay right.
func (s *UserService) Delete(actor Actor, id uint) error {
	if actor.ID != id && !actor.IsAdmin() {
		return util.ErrForbidden
	}

	var touched []uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		users := s.UserRepo.WithTx(tx)
		if _, err := users.FindByID(id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}

		engagement := s.EngagementRepo.WithTx(tx)
		likes, err := engagement.ListLikesByUser(id)
		if err != nil {
			return err
		}
		for _, like := range likes {
			removed, err := engagement.DeleteLike(like.ID)
			if err != nil {
				return err
			}
			if removed {
				if err := s.Aggregates.LikeRemoved(tx, like.CourseID); err != nil {
					return err
				}
				touched = append(touched, like.CourseID)
			}
		}

		ratings, err := engagement.ListRatingsByUser(id)
		if err != nil {
			return err
		}
		for _, rating := range ratings {
			removed, err := engagement.DeleteRating(rating.ID)
			if err != nil {
				return err
			}
			if removed {
				if err := s.Aggregates.RatingRemoved(tx, rating.CourseID, rating.Rating); err != nil {
					return err
				}
				touched = append(touched, rating.CourseID)
			}
		}

		return users.Delete(id)
	})
	if err != nil {
		return err
	}
	if len(touched) > 0 {
		s.Cache.Invalidate(context.Background(), touched...)
	}
	return nil
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
