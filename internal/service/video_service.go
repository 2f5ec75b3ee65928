package service

import (
	"context"
	"errors"
	"io"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type VideoService struct {
	DB        *gorm.DB
	VideoRepo *repository.VideoRepository
	Access    *AccessService
	Storage   *StorageService
	Cfg       *config.StorageConfig
}

func NewVideoService(db *gorm.DB, videoRepo *repository.VideoRepository, access *AccessService, storage *StorageService, cfg *config.StorageConfig) *VideoService {
	return &VideoService{
		DB:        db,
		VideoRepo: videoRepo,
		Access:    access,
		Storage:   storage,
		Cfg:       cfg,
	}
}

// VideoUpload is one uploaded file plus its form fields.
type VideoUpload struct {
	Title    string
	Order    *int
	Filename string
	Size     int64
	File     io.ReadSeeker
}

func (s *VideoService) List(actor Actor, courseID uint) ([]model.CourseVideo, error) {
	if err := s.Access.CanView(actor, courseID); err != nil {
		return nil, err
	}
	return s.VideoRepo.ListByCourse(courseID)
}

// Upload stores the file in the blob store and appends the video to the
// course. Without an explicit order the video goes after the current last one.
func (s *VideoService) Upload(ctx context.Context, actor Actor, courseID uint, up VideoUpload) (*model.CourseVideo, error) {
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return nil, err
	}
	if up.Title == "" {
		return nil, util.NewValidationError("title", "this field is required")
	}
	if up.Order != nil && *up.Order <= 0 {
		return nil, util.NewValidationError("order", "must be a positive integer")
	}
	if max := s.Cfg.MaxUploadMB * 1024 * 1024; max > 0 && up.Size > max {
		return nil, util.NewValidationError("video", "file is too large")
	}

	mimeType, _ := util.SniffMimeType(up.File, []string{util.MimeVideo})
	if !util.IsVideoFile(up.Filename, mimeType) {
		return nil, util.NewValidationError("video", "unsupported video file")
	}
	if _, err := up.File.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	if mimeType == util.MimeOctetStream {
		mimeType = "video/" + extOf(up.Filename)
	}

	key := ObjectKey("videos", up.Filename)
	url, err := s.Storage.Upload(ctx, key, up.File, up.Size, mimeType)
	if err != nil {
		return nil, err
	}

	video := &model.CourseVideo{
		CourseID:  courseID,
		Title:     up.Title,
		ObjectKey: key,
		URL:       url,
		Size:      up.Size,
	}
	s.probe(key, video)

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.VideoRepo.WithTx(tx)
		if up.Order != nil {
			video.Order = *up.Order
		} else {
			max, err := repo.MaxOrder(courseID)
			if err != nil {
				return err
			}
			video.Order = max + 1
		}
		return repo.Create(video)
	})
	if err != nil {
		if delErr := s.Storage.Delete(ctx, key); delErr != nil {
			logger.Log.Warn("orphaned video object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, err
	}
	return video, nil
}

// probe fills duration and format from ffprobe when the object is on local disk.
func (s *VideoService) probe(key string, video *model.CourseVideo) {
	if !s.Cfg.ProbeVideos {
		return
	}
	path, ok := s.Storage.LocalPath(key)
	if !ok {
		return
	}
	info, err := util.ProbeVideo(path)
	if err != nil {
		logger.Log.Warn("video probe failed", zap.String("key", key), zap.Error(err))
		return
	}
	video.Duration = info.Duration
	video.Format = info.Format
	if info.Size > 0 {
		video.Size = info.Size
	}
}

// BulkDelete removes the listed videos of a course. Every id must belong to
// the course or nothing is deleted.
func (s *VideoService) BulkDelete(ctx context.Context, actor Actor, courseID uint, ids []uint) error {
	if err := s.Access.CanManage(actor, courseID); err != nil {
		return err
	}
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return util.NewValidationError("ids", "at least one video id is required")
	}

	var videos []model.CourseVideo
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		repo := s.VideoRepo.WithTx(tx)
		var err error
		videos, err = repo.FindByIDs(courseID, ids)
		if err != nil {
			return err
		}
		if len(videos) != len(ids) {
			return util.NewValidationError("ids", "Invalid video id")
		}
		return repo.DeleteWithContent(ids)
	})
	if err != nil {
		return err
	}

	for _, v := range videos {
		if err := s.Storage.Delete(ctx, v.ObjectKey); err != nil {
			logger.Log.Warn("video object delete failed", zap.String("key", v.ObjectKey), zap.Error(err))
		}
	}
	return nil
}

func (s *VideoService) Delete(ctx context.Context, actor Actor, courseID, videoID uint) error {
	if _, err := s.VideoRepo.FindByID(videoID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return util.ErrVideoNotFound
		}
		return err
	}
	err := s.BulkDelete(ctx, actor, courseID, []uint{videoID})
	var verr *util.ValidationError
	if errors.As(err, &verr) {
		return util.ErrVideoNotFound
	}
	return err
}

func extOf(filename string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
}
