package database

import (
	"fmt"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"log"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const SingleAdminIndex = "uniq_single_admin"

func dialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql", "":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
			cfg.User,
			cfg.Password,
			cfg.Host,
			cfg.Port,
			cfg.DBName,
			cfg.Charset,
			cfg.ParseTime,
		)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.DBName,
			cfg.SSLMode,
		)
		return postgres.Open(dsn), nil
	case "sqlite":
		sep := "?"
		if strings.Contains(cfg.Path, "?") {
			sep = "&"
		}
		return sqlite.Open(cfg.Path + sep + "_foreign_keys=on"), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// Open connects without migrating.
func Open(cfg *config.DatabaseConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	d, err := dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Driver == "sqlite" {
		// one writer at a time
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	logLevel := logger.Warn
	db, err := Open(cfg, logLevel)
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")
	return db, nil
}

// Migrate creates or updates every table the service uses.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Enrollment{},
		&model.CourseVideo{},
		&model.CourseComment{},
		&model.CourseLike{},
		&model.CourseRating{},
		&model.CourseProgressTracking{},
		&model.Quiz{},
		&model.Question{},
		&model.QuizAttempt{},
		&model.AnswerAttempt{},
	); err != nil {
		return err
	}
	return singleAdminIndex(db)
}

// singleAdminIndex lets at most one row hold role = 'admin'. The service
// checks first; this covers two transactions that both find no admin yet.
func singleAdminIndex(db *gorm.DB) error {
	m := db.Migrator()
	if m.HasIndex(&model.User{}, SingleAdminIndex) {
		return nil
	}
	switch db.Dialector.Name() {
	case "mysql":
		// no partial indexes; NULLs do not collide in a unique index
		if !m.HasColumn(&model.User{}, "admin_flag") {
			if err := db.Exec("ALTER TABLE users ADD COLUMN admin_flag TINYINT " +
				"AS (IF(`role` = 'admin', 1, NULL)) STORED").Error; err != nil {
				return err
			}
		}
		return db.Exec("CREATE UNIQUE INDEX " + SingleAdminIndex + " ON users (admin_flag)").Error
	default:
		return db.Exec("CREATE UNIQUE INDEX " + SingleAdminIndex + " ON users (role) WHERE role = 'admin'").Error
	}
}
