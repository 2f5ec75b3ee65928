package model

// swagger:model CourseComment
type CourseComment struct {
	BaseModel
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	UserID   uint   `gorm:"index;not null" json:"userId"`
	User     *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Content  string `gorm:"type:text;not null" json:"content"`
}

func (CourseComment) TableName() string {
	return "course_comments"
}

// swagger:model CourseLike
type CourseLike struct {
	BaseModel
	CourseID uint `gorm:"uniqueIndex:idx_like_course_user;not null" json:"courseId"`
	UserID   uint `gorm:"uniqueIndex:idx_like_course_user;not null" json:"userId"`
}

func (CourseLike) TableName() string {
	return "course_likes"
}

const (
	MinRating = 1
	MaxRating = 5
)

// swagger:model CourseRating
type CourseRating struct {
	BaseModel
	CourseID uint `gorm:"uniqueIndex:idx_rating_course_user;not null" json:"courseId"`
	UserID   uint `gorm:"uniqueIndex:idx_rating_course_user;not null" json:"userId"`
	Rating   int  `gorm:"not null" json:"rating"`
}

func (CourseRating) TableName() string {
	return "course_ratings"
}
