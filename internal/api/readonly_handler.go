package api

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stonefoxes/shproto-server/internal/protocol/shproto"
	"github.com/stonefoxes/shproto-server/internal/session"
	"github.com/stonefoxes/shproto-server/internal/storage/gormrepo"
)

// ReadOnlyHandler 只读API处理器：帧流水与会话查询
type ReadOnlyHandler struct {
	repo   *gormrepo.Repository
	sess   session.Manager
	names  *shproto.CommandNames
	logger *zap.Logger
}

// NewReadOnlyHandler 创建只读API处理器
func NewReadOnlyHandler(repo *gormrepo.Repository, sess session.Manager, names *shproto.CommandNames, logger *zap.Logger) *ReadOnlyHandler {
	if names == nil {
		names = shproto.DefaultCommandNames()
	}
	return &ReadOnlyHandler{
		repo:   repo,
		sess:   sess,
		names:  names,
		logger: logger,
	}
}

func queryInt(c *gin.Context, key string, def int) int {
	if v := c.Query(key); v != "" {
		if vv, e := strconv.Atoi(v); e == nil {
			return vv
		}
	}
	return def
}

// ListLinks 分页查询链路列表
func (h *ReadOnlyHandler) ListLinks(c *gin.Context) {
	limit := queryInt(c, "limit", 100)
	offset := queryInt(c, "offset", 0)

	list, err := h.repo.ListLinks(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}
	c.JSON(200, gin.H{"links": list})
}

// ListFrames 查询最近帧流水（可按链路与命令字过滤）
func (h *ReadOnlyHandler) ListFrames(c *gin.Context) {
	linkID := int64(queryInt(c, "linkId", 0))
	cmd := queryInt(c, "cmd", -1)
	limit := queryInt(c, "limit", 100)

	frames, err := h.repo.ListRecentFrames(c.Request.Context(), linkID, cmd, limit)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	type frameView struct {
		ID        int64     `json:"id"`
		LinkID    int64     `json:"link_id"`
		Cmd       int       `json:"cmd"`
		CmdName   string    `json:"cmd_name"`
		Payload   []byte    `json:"payload"`
		Valid     bool      `json:"valid"`
		CRC       int       `json:"crc"`
		CreatedAt time.Time `json:"created_at"`
	}
	views := make([]frameView, 0, len(frames))
	for _, f := range frames {
		views = append(views, frameView{
			ID:        f.ID,
			LinkID:    f.LinkID,
			Cmd:       f.Cmd,
			CmdName:   h.names.Name(f.Cmd),
			Payload:   f.Payload,
			Valid:     f.Valid,
			CRC:       f.CRC,
			CreatedAt: f.CreatedAt,
		})
	}
	c.JSON(200, gin.H{"frames": views})
}

// CommandStats 统计时间窗口内各命令字的帧数量
func (h *ReadOnlyHandler) CommandStats(c *gin.Context) {
	windowMin := queryInt(c, "windowMinutes", 60)
	since := time.Now().Add(-time.Duration(windowMin) * time.Minute)

	rows, err := h.repo.CountByCommand(c.Request.Context(), since)
	if err != nil {
		c.JSON(500, gin.H{"error": err.Error()})
		return
	}

	type statView struct {
		Cmd     int    `json:"cmd"`
		CmdName string `json:"cmd_name"`
		Total   int64  `json:"total"`
	}
	views := make([]statView, 0, len(rows))
	for _, row := range rows {
		views = append(views, statView{Cmd: row.Cmd, CmdName: h.names.Name(row.Cmd), Total: row.Total})
	}
	c.JSON(200, gin.H{"since": since, "stats": views})
}

// SessionStatus 查询指定链路会话状态
func (h *ReadOnlyHandler) SessionStatus(c *gin.Context) {
	linkID := c.Param("linkId")
	now := time.Now()
	c.JSON(200, gin.H{
		"linkId": linkID,
		"online": h.sess.IsOnline(linkID, now),
	})
}

// OnlineCount 查询当前在线链路数量
func (h *ReadOnlyHandler) OnlineCount(c *gin.Context) {
	now := time.Now()
	c.JSON(200, gin.H{"online": h.sess.OnlineCount(now)})
}
