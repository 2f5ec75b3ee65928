package app

import (
	"lms_backend/docs"
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	a.registerPublicRoutes(router, c)

	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerUserRoutes(authGroup, c)
		a.registerCourseRoutes(authGroup, c)
		a.registerEnrollmentRoutes(authGroup, c)
		a.registerQuizRoutes(authGroup, c)
	}

	a.registerAdminRoutes(authGroup, c)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
		public.POST("/token/refresh", c.auth.Refresh)
	}
}

func (a *App) registerUserRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.GET("/profile", c.auth.GetProfile)
	rg.GET("/users", middleware.RoleMiddleware(model.Admin), c.user.ListUsers)
	rg.PUT("/users/password", c.user.ChangePassword)
	rg.GET("/users/:id", c.user.GetUser)
	rg.PATCH("/users/:id", c.user.UpdateUser)
	rg.DELETE("/users/:id", c.user.DeleteUser)
}

func (a *App) registerCourseRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := middleware.RoleMiddleware(model.Admin)
	instructor := middleware.RoleMiddleware(model.Instructor)
	student := middleware.RoleMiddleware(model.Student)

	courses := rg.Group("/courses")
	{
		courses.GET("", c.course.ListCourses)
		courses.POST("", admin, c.course.CreateCourse)
		courses.GET("/:id", c.course.GetCourse)
		courses.PUT("/:id", admin, c.course.UpdateCourse)
		courses.DELETE("/:id", admin, c.course.DeleteCourse)
		courses.GET("/:id/instructors", admin, c.course.GetInstructors)

		courses.GET("/:id/videos", c.video.ListVideos)
		courses.POST("/:id/videos", instructor, c.video.UploadVideo)
		courses.DELETE("/:id/videos", instructor, c.video.BulkDeleteVideos)
		courses.DELETE("/:id/videos/:videoId", instructor, c.video.DeleteVideo)

		courses.GET("/:id/comments", c.engagement.ListComments)
		courses.POST("/:id/comments", c.engagement.AddComment)
		courses.PATCH("/:id/comments/:commentId", c.engagement.EditComment)
		courses.DELETE("/:id/comments/:commentId", c.engagement.DeleteComment)
		courses.POST("/:id/likes", c.engagement.Like)
		courses.DELETE("/:id/likes", c.engagement.Unlike)
		courses.POST("/:id/ratings", c.engagement.Rate)
		courses.PUT("/:id/ratings", c.engagement.ChangeRating)
		courses.DELETE("/:id/ratings", c.engagement.Unrate)

		courses.GET("/:id/progress", student, c.progress.GetProgress)
		courses.POST("/:id/progress", student, c.progress.CreateProgress)
		courses.PUT("/:id/progress", student, c.progress.ReplaceProgress)
		courses.PATCH("/:id/progress", student, c.progress.AddProgress)
		courses.DELETE("/:id/progress", student, c.progress.DeleteProgress)
		courses.GET("/:id/students-progress", instructor, c.progress.StudentsProgress)
	}

	rg.GET("/instructor/courses", instructor, c.course.InstructorCourses)
}

func (a *App) registerEnrollmentRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := middleware.RoleMiddleware(model.Admin)

	enrollments := rg.Group("/enrollments")
	{
		enrollments.GET("", admin, c.enrollment.ListEnrollments)
		enrollments.GET("/:id", admin, c.enrollment.GetEnrollment)
		enrollments.PUT("/:id", admin, c.enrollment.ReplaceEnrollment)
		enrollments.PATCH("/:id", middleware.RoleMiddleware(model.Instructor), c.enrollment.PatchEnrollment)
		enrollments.DELETE("/:id", admin, c.enrollment.DeleteEnrollment)
	}

	student := rg.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.GET("/enrollments", c.enrollment.StudentEnrollments)
		student.POST("/enrollments", c.enrollment.Enroll)
		student.GET("/enrollments/:id", c.enrollment.StudentEnrollment)
		student.DELETE("/enrollments/:id", c.enrollment.Withdraw)
	}

	rg.GET("/instructor/students", middleware.RoleMiddleware(model.Instructor), c.enrollment.InstructorStudents)
}

func (a *App) registerQuizRoutes(rg *gin.RouterGroup, c *controllers) {
	instructor := middleware.RoleMiddleware(model.Instructor)
	student := middleware.RoleMiddleware(model.Student)

	rg.GET("/quizzes", c.quiz.ListQuizzes)
	rg.POST("/quizzes", instructor, c.quiz.CreateQuiz)
	rg.GET("/quizzes/:id", c.quiz.GetQuiz)
	rg.PUT("/quizzes/:id", instructor, c.quiz.UpdateQuiz)
	rg.DELETE("/quizzes/:id", instructor, c.quiz.DeleteQuiz)

	rg.POST("/questions", instructor, c.quiz.CreateQuestion)
	rg.GET("/questions/:id", c.quiz.GetQuestion)
	rg.PUT("/questions/:id", instructor, c.quiz.UpdateQuestion)
	rg.DELETE("/questions/:id", instructor, c.quiz.DeleteQuestion)

	rg.POST("/quiz-attempts", student, c.attempt.SubmitAttempt)
	rg.GET("/quiz-attempts/mine", student, c.attempt.MyAttempts)
	rg.GET("/quiz-attempts/:id", instructor, c.attempt.GetAttempt)
	rg.PUT("/quiz-attempts/:id", instructor, c.attempt.GradeAttempt)
	rg.DELETE("/quiz-attempts/:id", instructor, c.attempt.DeleteAttempt)
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("/admin")
	admin.Use(middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/courses", c.course.ListAllCourses)
		admin.POST("/courses/:id/restore", c.course.RestoreCourse)
	}
}
