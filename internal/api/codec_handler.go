package api

import (
	"encoding/hex"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stonefoxes/shproto-server/internal/protocol/shproto"
)

// CodecHandler 组帧/解析调试接口，面向联调排障
type CodecHandler struct {
	capacity int
	names    *shproto.CommandNames
	logger   *zap.Logger
}

// NewCodecHandler 创建编解码调试处理器
func NewCodecHandler(capacity int, names *shproto.CommandNames, logger *zap.Logger) *CodecHandler {
	if capacity <= 0 {
		capacity = shproto.DefaultCapacity
	}
	if names == nil {
		names = shproto.DefaultCommandNames()
	}
	return &CodecHandler{capacity: capacity, names: names, logger: logger}
}

type encodeRequest struct {
	Cmd        int    `json:"cmd" binding:"required"`
	PayloadHex string `json:"payload"`
}

// Encode 组帧：命令字 + 十六进制负载 -> 线上字节流
func (h *CodecHandler) Encode(c *gin.Context) {
	var req encodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}
	if req.Cmd < 0 || req.Cmd > 0xFF {
		c.JSON(400, gin.H{"error": fmt.Sprintf("cmd out of range: %d", req.Cmd)})
		return
	}

	payload, err := hex.DecodeString(req.PayloadHex)
	if err != nil {
		c.JSON(400, gin.H{"error": "payload must be hex encoded"})
		return
	}

	wire, err := shproto.Build(byte(req.Cmd), payload, h.capacity)
	if err != nil {
		c.JSON(422, gin.H{"error": err.Error()})
		return
	}

	c.JSON(200, gin.H{
		"cmd":      req.Cmd,
		"cmd_name": h.names.Name(req.Cmd),
		"wire":     hex.EncodeToString(wire),
		"length":   len(wire),
	})
}

type decodeRequest struct {
	DataHex string `json:"data" binding:"required"`
}

// Decode 解析：线上字节流 -> 完整帧列表（含校验失败的帧）
func (h *CodecHandler) Decode(c *gin.Context) {
	var req decodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{"error": err.Error()})
		return
	}

	data, err := hex.DecodeString(req.DataHex)
	if err != nil {
		c.JSON(400, gin.H{"error": "data must be hex encoded"})
		return
	}

	type frameView struct {
		Cmd     int    `json:"cmd"`
		CmdName string `json:"cmd_name"`
		Payload string `json:"payload"`
		Valid   bool   `json:"valid"`
	}

	p := shproto.NewParser(h.capacity)
	var frames []frameView
	var capacityErrs int
	for _, b := range data {
		f, err := p.Feed(b)
		if err != nil {
			capacityErrs++
			continue
		}
		if f == nil {
			continue
		}
		fv := frameView{Valid: f.Valid()}
		if f.Len() > 0 {
			fv.Cmd = int(f.Command())
			fv.CmdName = h.names.Name(fv.Cmd)
			fv.Payload = hex.EncodeToString(f.Body())
		}
		frames = append(frames, fv)
	}

	c.JSON(200, gin.H{
		"frames":        frames,
		"capacity_errs": capacityErrs,
	})
}
