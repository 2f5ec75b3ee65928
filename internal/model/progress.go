package model

// swagger:model CourseProgressTracking
type CourseProgressTracking struct {
	BaseModel
	StudentID       uint          `gorm:"uniqueIndex:idx_progress_student_course;not null" json:"studentId"`
	CourseID        uint          `gorm:"uniqueIndex:idx_progress_student_course;not null" json:"courseId"`
	CompletedVideos []CourseVideo `gorm:"many2many:progress_completed_videos;" json:"completedVideos"`
}

func (CourseProgressTracking) TableName() string {
	return "course_progress_trackings"
}
