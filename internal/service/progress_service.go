package service

import (
	"errors"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type ProgressService struct {
	DB             *gorm.DB
	ProgressRepo   *repository.ProgressRepository
	VideoRepo      *repository.VideoRepository
	CourseRepo     *repository.CourseRepository
	UserRepo       *repository.UserRepository
	EnrollmentRepo *repository.EnrollmentRepository
	Access         *AccessService
}

func NewProgressService(db *gorm.DB, progressRepo *repository.ProgressRepository, videoRepo *repository.VideoRepository, courseRepo *repository.CourseRepository, userRepo *repository.UserRepository, enrollmentRepo *repository.EnrollmentRepository, access *AccessService) *ProgressService {
	return &ProgressService{
		DB:             db,
		ProgressRepo:   progressRepo,
		VideoRepo:      videoRepo,
		CourseRepo:     courseRepo,
		UserRepo:       userRepo,
		EnrollmentRepo: enrollmentRepo,
		Access:         access,
	}
}

type VideoRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	URL   string `json:"video"`
	Order int    `json:"order"`
}

// ProgressView is the wire shape of a progress record with its derived values.
type ProgressView struct {
	ID                   uint       `json:"id"`
	Course               Ref        `json:"course"`
	Student              UserRef    `json:"student"`
	CompletedVideos      []VideoRef `json:"completedVideos"`
	RemainingVideos      []VideoRef `json:"remainingVideos"`
	CompletionPercentage float64    `json:"completionPercentage"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// CompletionPercentage is completed/total*100, and 0 for a course without videos.
func CompletionPercentage(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(completed) / float64(total) * 100
}

func videoRefs(videos []model.CourseVideo) []VideoRef {
	out := make([]VideoRef, 0, len(videos))
	for _, v := range videos {
		out = append(out, VideoRef{ID: v.ID, Title: v.Title, URL: v.URL, Order: v.Order})
	}
	return out
}

func (s *ProgressService) view(p *model.CourseProgressTracking, course *model.Course, student *model.User, all []model.CourseVideo) ProgressView {
	done := make(map[uint]struct{}, len(p.CompletedVideos))
	for _, v := range p.CompletedVideos {
		done[v.ID] = struct{}{}
	}
	var remaining []model.CourseVideo
	for _, v := range all {
		if _, ok := done[v.ID]; !ok {
			remaining = append(remaining, v)
		}
	}
	return ProgressView{
		ID:                   p.ID,
		Course:               Ref{ID: course.ID, Name: course.Name},
		Student:              UserRef{ID: student.ID, Username: student.Username},
		CompletedVideos:      videoRefs(p.CompletedVideos),
		RemainingVideos:      videoRefs(remaining),
		CompletionPercentage: CompletionPercentage(len(p.CompletedVideos), len(all)),
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func (s *ProgressService) render(courseID, studentID uint) (*ProgressView, error) {
	p, err := s.ProgressRepo.Find(courseID, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrProgressNotFound
		}
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	student, err := s.UserRepo.FindByID(studentID)
	if err != nil {
		return nil, err
	}
	all, err := s.VideoRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}
	v := s.view(p, course, student, all)
	return &v, nil
}

func (s *ProgressService) Get(actor Actor, courseID uint) (*ProgressView, error) {
	if err := s.Access.RequireApprovedStudent(actor, courseID); err != nil {
		return nil, err
	}
	return s.render(courseID, actor.ID)
}

// courseVideos resolves ids to videos of the course; every id must match.
func (s *ProgressService) courseVideos(repo *repository.VideoRepository, courseID uint, ids []uint) ([]model.CourseVideo, error) {
	ids = uniqueIDs(ids)
	videos, err := repo.FindByIDs(courseID, ids)
	if err != nil {
		return nil, err
	}
	if len(videos) != len(ids) {
		return nil, util.NewValidationError("completedVideos", "Invalid video id")
	}
	return videos, nil
}

func (s *ProgressService) Create(actor Actor, courseID uint, videoIDs []uint) (*ProgressView, error) {
	if err := s.Access.RequireApprovedStudent(actor, courseID); err != nil {
		return nil, err
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		videos, err := s.courseVideos(s.VideoRepo.WithTx(tx), courseID, videoIDs)
		if err != nil {
			return err
		}
		repo := s.ProgressRepo.WithTx(tx)
		p := &model.CourseProgressTracking{CourseID: courseID, StudentID: actor.ID}
		if err := repo.Create(p); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return util.ErrProgressExists
			}
			return err
		}
		return repo.AppendVideos(p, videos)
	})
	if err != nil {
		return nil, err
	}
	return s.render(courseID, actor.ID)
}

// Update replaces the completed set when replace is true, otherwise adds to it.
func (s *ProgressService) Update(actor Actor, courseID uint, videoIDs []uint, replace bool) (*ProgressView, error) {
	if err := s.Access.RequireApprovedStudent(actor, courseID); err != nil {
		return nil, err
	}
	if videoIDs == nil {
		return nil, util.NewValidationError("completedVideos", "this field is required")
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.ProgressRepo.WithTx(tx)
		p, err := repo.Find(courseID, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrProgressNotFound
			}
			return err
		}
		videos, err := s.courseVideos(s.VideoRepo.WithTx(tx), courseID, videoIDs)
		if err != nil {
			return err
		}
		if replace {
			return repo.ReplaceVideos(p, videos)
		}
		return repo.AppendVideos(p, videos)
	})
	if err != nil {
		return nil, err
	}
	return s.render(courseID, actor.ID)
}

func (s *ProgressService) Delete(actor Actor, courseID uint) error {
	if err := s.Access.RequireApprovedStudent(actor, courseID); err != nil {
		return err
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.ProgressRepo.WithTx(tx)
		p, err := repo.Find(courseID, actor.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrProgressNotFound
			}
			return err
		}
		return repo.Delete(p)
	})
}

// StudentsProgress lists the progress of the approved students assigned to
// the calling instructor. An admin sees every approved student of the course.
func (s *ProgressService) StudentsProgress(actor Actor, courseID uint) ([]ProgressView, error) {
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return nil, err
	}
	var enrollments []model.Enrollment
	var err error
	if actor.IsAdmin() {
		enrollments, err = s.EnrollmentRepo.ListApprovedByCourse(courseID)
	} else {
		enrollments, err = s.EnrollmentRepo.ListApprovedByInstructor(courseID, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	studentIDs := make([]uint, 0, len(enrollments))
	students := make(map[uint]*model.User, len(enrollments))
	for i := range enrollments {
		studentIDs = append(studentIDs, enrollments[i].StudentID)
		students[enrollments[i].StudentID] = enrollments[i].Student
	}
	records, err := s.ProgressRepo.ListByStudents(courseID, studentIDs)
	if err != nil {
		return nil, err
	}
	course, err := s.CourseRepo.FindByID(courseID)
	if err != nil {
		return nil, err
	}
	all, err := s.VideoRepo.ListByCourse(courseID)
	if err != nil {
		return nil, err
	}

	out := make([]ProgressView, 0, len(records))
	for i := range records {
		student := students[records[i].StudentID]
		if student == nil {
			student = &model.User{BaseModel: model.BaseModel{ID: records[i].StudentID}}
		}
		out = append(out, s.view(&records[i], course, student, all))
	}
	return out, nil
}
