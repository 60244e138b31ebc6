package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	db      *gorm.DB
	initErr error
	once    sync.Once
)

// Open 打开数据库连接 (单例模式)
// 第一次初始化失败后, 后续调用返回同一个错误而不是 nil 连接
func Open(dbPath string) (*gorm.DB, error) {
	once.Do(func() {
		db, initErr = initDB(dbPath)
	})
	return db, initErr
}

// initDB 初始化数据库连接
func initDB(dbPath string) (*gorm.DB, error) {
	if dbPath == "" {
		dbPath = defaultDBPath()
	}

	// 确保数据目录存在
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// 连接数据库
	conn, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect sqlite: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite database object: %w", err)
	}

	// 参见: https://github.com/glebarez/sqlite/issues/52
	// SQLite 只支持单个写入连接
	sqlDB.SetMaxOpenConns(1)

	// 自动迁移数据库表结构
	if err := AutoMigrate(conn); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	return conn, nil
}

// defaultDBPath 获取数据库文件路径
func defaultDBPath() string {
	// 优先使用环境变量
	if dbPath := os.Getenv("JENKINS_MCP_DB_PATH"); dbPath != "" {
		return dbPath
	}

	return "./data/jenkins-mcp.db"
}

// Close 关闭数据库连接
func Close() error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
