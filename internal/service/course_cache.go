package service

import (
	"context"
	"encoding/json"
	"fmt"
	"lms_backend/pkg/logger"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// CourseCache holds rendered course reads. Writers invalidate after commit.
type CourseCache interface {
	GetCourse(ctx context.Context, id uint) (*CourseDetail, bool)
	SetCourse(ctx context.Context, course *CourseDetail)
	GetList(ctx context.Context, key string) (*CoursePage, bool)
	SetList(ctx context.Context, key string, page *CoursePage)
	Invalidate(ctx context.Context, courseIDs ...uint)
}

// NewCourseCache returns a redis-backed cache, or a no-op one when rdb is nil.
func NewCourseCache(rdb *redis.Client, ttl time.Duration) CourseCache {
	if rdb == nil {
		return nopCourseCache{}
	}
	return &redisCourseCache{rdb: rdb, ttl: ttl}
}

type nopCourseCache struct{}

func (nopCourseCache) GetCourse(context.Context, uint) (*CourseDetail, bool) { return nil, false }
func (nopCourseCache) SetCourse(context.Context, *CourseDetail) {}
func (nopCourseCache) GetList(context.Context, string) (*CoursePage, bool) { return nil, false }
func (nopCourseCache) SetList(context.Context, string, *CoursePage) {}
func (nopCourseCache) Invalidate(context.Context, ...uint) {}

const (
	courseKeyPrefix  = "lms:course:"
	courseListPrefix = "lms:courses:"
	courseListGen    = "lms:courses:gen"
)

// redisCourseCache versions list entries with a generation counter so a single
// INCR retires every cached page.
type redisCourseCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func (c *redisCourseCache) GetCourse(ctx context.Context, id uint) (*CourseDetail, bool) {
	var course CourseDetail
	if !c.get(ctx, fmt.Sprintf("%s%d", courseKeyPrefix, id), &course) {
		return nil, false
	}
	return &course, true
}

func (c *redisCourseCache) SetCourse(ctx context.Context, course *CourseDetail) {
	c.set(ctx, fmt.Sprintf("%s%d", courseKeyPrefix, course.ID), course)
}

func (c *redisCourseCache) GetList(ctx context.Context, key string) (*CoursePage, bool) {
	var page CoursePage
	if !c.get(ctx, c.listKey(ctx, key), &page) {
		return nil, false
	}
	return &page, true
}

func (c *redisCourseCache) SetList(ctx context.Context, key string, page *CoursePage) {
	c.set(ctx, c.listKey(ctx, key), page)
}

func (c *redisCourseCache) Invalidate(ctx context.Context, courseIDs ...uint) {
	pipe := c.rdb.TxPipeline()
	for _, id := range courseIDs {
		pipe.Del(ctx, fmt.Sprintf("%s%d", courseKeyPrefix, id))
	}
	pipe.Incr(ctx, courseListGen)
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Log.Warn("course cache invalidation failed", zap.Uints("courses", courseIDs), zap.Error(err))
	}
}

func (c *redisCourseCache) listKey(ctx context.Context, key string) string {
	gen, err := c.rdb.Get(ctx, courseListGen).Int64()
	if err != nil && err != redis.Nil {
		logger.Log.Warn("course cache generation read failed", zap.Error(err))
	}
	return fmt.Sprintf("%s%d:%s", courseListPrefix, gen, key)
}

func (c *redisCourseCache) get(ctx context.Context, key string, dst interface{}) bool {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("course cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *redisCourseCache) set(ctx context.Context, key string, v interface{}) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Log.Warn("course cache write failed", zap.String("key", key), zap.Error(err))
	}
}
