package model

import (
	"time"

	"gorm.io/gorm"
)

// Course is soft-deleted: DeletedAt drives GORM's default scope, IsDeleted
// mirrors it as an explicit flag.
// swagger:model Course
type Course struct {
	BaseModel
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Instructors  []User         `gorm:"many2many:course_instructors;" json:"instructors,omitempty"`
	Likes        int            `gorm:"default:0;not null" json:"likes"`
	TotalRatings int            `gorm:"default:0;not null" json:"totalRatings"`
	Rating       float64        `gorm:"default:0;not null" json:"rating"`
	IsDeleted    bool           `gorm:"default:false;index" json:"isDeleted"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// DeletedTime returns the soft-delete timestamp, or nil for a live course.
func (c *Course) DeletedTime() *time.Time {
	if !c.DeletedAt.Valid {
		return nil
	}
	t := c.DeletedAt.Time
	return &t
}
