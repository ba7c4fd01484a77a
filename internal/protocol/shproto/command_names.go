package shproto

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CommandNames 命令字节到可读名称的映射，用于日志与查询接口
type CommandNames struct {
	Map map[int]string `yaml:"map"`
}

// DefaultCommandNames 返回默认的命令名称映射
func DefaultCommandNames() *CommandNames {
	return &CommandNames{
		Map: map[int]string{
			0x01: "ping",        // 链路探测
			0x02: "pong",        // 探测应答
			0x03: "status",      // 状态上报
			0x10: "data_report", // 数据上报
			0x11: "data_ack",    // 数据确认
			0x20: "config_set",  // 参数下发
			0x21: "config_ack",  // 参数确认
		},
	}
}

// LoadCommandNames 从 YAML 文件加载命令名称映射
func LoadCommandNames(path string) (*CommandNames, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read command names: %w", err)
	}
	var m CommandNames
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("unmarshal command names: %w", err)
	}
	if m.Map == nil {
		m.Map = make(map[int]string)
	}
	return &m, nil
}

// Name 返回命令的可读名称，未登记时以十六进制兜底
func (m *CommandNames) Name(cmd int) string {
	if m != nil && m.Map != nil {
		if name, ok := m.Map[cmd]; ok {
			return name
		}
	}
	return fmt.Sprintf("cmd_0x%02X", cmd)
}
