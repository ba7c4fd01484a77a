package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository 提供帧流水的热路径写入能力
type Repository struct {
	Pool *pgxpool.Pool
}

// EnsureLink 返回链路ID，若不存在则插入并更新最近时间
func (r *Repository) EnsureLink(ctx context.Context, remoteAddr string) (int64, error) {
	const q = `INSERT INTO links (remote_addr, last_seen_at)
               VALUES ($1, NOW())
               ON CONFLICT (remote_addr) DO UPDATE SET updated_at = NOW(), last_seen_at = NOW()
               RETURNING id`
	var id int64
	err := r.Pool.QueryRow(ctx, q, remoteAddr).Scan(&id)
	return id, err
}

// InsertFrameLog 插入一条帧流水（解析结果，有效帧与校验失败帧都入库）
func (r *Repository) InsertFrameLog(ctx context.Context, linkID int64, cmd int, payload []byte, valid bool, crc uint16) error {
	const q = `INSERT INTO frame_log (link_id, cmd, payload, valid, crc, created_at)
               VALUES ($1,$2,$3,$4,$5,NOW())`
	_, err := r.Pool.Exec(ctx, q, linkID, cmd, payload, valid, int(crc))
	return err
}

// TouchLink 更新链路最近时间
func (r *Repository) TouchLink(ctx context.Context, linkID int64) error {
	const q = `UPDATE links SET last_seen_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.Pool.Exec(ctx, q, linkID)
	return err
}
