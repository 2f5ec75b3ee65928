package model

// CourseVideo is one ordered item of a course's content.
// swagger:model CourseVideo
type CourseVideo struct {
	BaseModel
	CourseID  uint    `gorm:"index;not null" json:"courseId"`
	Title     string  `gorm:"size:100;not null" json:"title"`
	ObjectKey string  `gorm:"size:255;not null" json:"-"`
	URL       string  `gorm:"size:255;not null" json:"video"`
	Order     int     `gorm:"column:order;not null" json:"order"`
	Duration  float64 `gorm:"default:0" json:"duration"` // seconds
	Size      int64   `gorm:"default:0" json:"size"`
	Format    string  `gorm:"size:50" json:"format,omitempty"`
}

func (CourseVideo) TableName() string {
	return "course_videos"
}
