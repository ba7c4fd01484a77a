package models

import "time"

// Link 一条 TCP 链路的归档记录（以远端地址为唯一键）
type Link struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	RemoteAddr string    `gorm:"column:remote_addr;uniqueIndex;size:64" json:"remote_addr"`
	LastSeenAt time.Time `gorm:"column:last_seen_at" json:"last_seen_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Link) TableName() string { return "links" }

// FrameLog 帧流水：每个完整帧（含校验失败的）一条记录
type FrameLog struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	LinkID    int64     `gorm:"column:link_id;index" json:"link_id"`
	Cmd       int       `gorm:"column:cmd;index" json:"cmd"`
	Payload   []byte    `gorm:"column:payload" json:"payload"`
	Valid     bool      `gorm:"column:valid" json:"valid"`
	CRC       int       `gorm:"column:crc" json:"crc"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (FrameLog) TableName() string { return "frame_log" }
