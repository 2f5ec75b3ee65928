package model

type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "pending"
	EnrollmentApproved EnrollmentStatus = "approved"
	EnrollmentRejected EnrollmentStatus = "rejected"
)

func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentPending, EnrollmentApproved, EnrollmentRejected:
		return true
	}
	return false
}

// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	CourseID     uint             `gorm:"uniqueIndex:idx_enrollment_course_student;not null" json:"courseId"`
	Course       *Course          `gorm:"foreignKey:CourseID" json:"-"`
	StudentID    uint             `gorm:"uniqueIndex:idx_enrollment_course_student;not null" json:"studentId"`
	Student      *User            `gorm:"foreignKey:StudentID" json:"-"`
	InstructorID *uint            `gorm:"index" json:"instructorId"`
	Instructor   *User            `gorm:"foreignKey:InstructorID" json:"-"`
	Status       EnrollmentStatus `gorm:"size:20;index;default:'pending'" json:"status"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
