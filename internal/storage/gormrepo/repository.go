package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/stonefoxes/shproto-server/internal/storage/models"
)

// Repository 基于 GORM 的读侧查询仓库。
// 热路径写入走 pg.Repository（pgx），这里只服务 HTTP 查询接口。
type Repository struct {
	db *gorm.DB
}

// Open 打开 Postgres 连接并自动建表
func Open(dsn string) (*Repository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Link{}, &models.FrameLog{}); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// New 返回一个使用给定 *gorm.DB 的仓库实例
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetLinkByAddr 通过远端地址查询链路
func (r *Repository) GetLinkByAddr(ctx context.Context, remoteAddr string) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).Where("remote_addr = ?", remoteAddr).First(&link).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	return &link, err
}

// ListLinks 分页返回链路列表，按最近时间倒序
func (r *Repository) ListLinks(ctx context.Context, limit, offset int) ([]models.Link, error) {
	var links []models.Link
	q := r.db.WithContext(ctx).Order("last_seen_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	if err := q.Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}

// ListRecentFrames 返回最近的帧流水，cmd < 0 表示不过滤命令字
func (r *Repository) ListRecentFrames(ctx context.Context, linkID int64, cmd int, limit int) ([]models.FrameLog, error) {
	var frames []models.FrameLog
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if linkID > 0 {
		q = q.Where("link_id = ?", linkID)
	}
	if cmd >= 0 {
		q = q.Where("cmd = ?", cmd)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&frames).Error; err != nil {
		return nil, err
	}
	return frames, nil
}

// CmdCount 命令字统计行
type CmdCount struct {
	Cmd   int   `json:"cmd"`
	Total int64 `json:"total"`
}

// CountByCommand 统计时间窗口内各命令字的帧数量
func (r *Repository) CountByCommand(ctx context.Context, since time.Time) ([]CmdCount, error) {
	var rows []CmdCount
	err := r.db.WithContext(ctx).
		Model(&models.FrameLog{}).
		Select("cmd, COUNT(*) AS total").
		Where("created_at >= ?", since).
		Group("cmd").
		Order("total DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
