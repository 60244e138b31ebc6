package model

import "time"

// ToolCallLog MCP 工具调用日志
type ToolCallLog struct {
	ID        string    `gorm:"primaryKey;size:50" json:"id"`
	Timestamp time.Time `json:"timestamp" gorm:"index"`
	ToolName  string    `json:"tool_name" gorm:"index;size:100"`
	Status    string    `json:"status" gorm:"size:20"` // "success" | "error"
	Latency   int       `json:"latency"`               // 延迟(毫秒)
	Request   string    `json:"request" gorm:"type:text"`
	Response  string    `json:"response" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 指定表名
func (ToolCallLog) TableName() string {
	return "tool_call_logs"
}
