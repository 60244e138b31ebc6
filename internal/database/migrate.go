package database

import (
	"github.com/PhNyx/jenkins-mcp/internal/model"
	"gorm.io/gorm"
)

// AutoMigrate 自动迁移数据库表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.ToolCallLog{},
	)
}
