package config

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/thisdotrob/family-monolith/models"
)

var DB *gorm.DB

// InitDB 初始化数据库连接
func InitDB(config Config) error {
	dsn := config.GetDBConnString()

	var err error
	DB, err = gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return err
	}

	// 设置连接池
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	// 设置连接池参数
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// 自动迁移表结构
	if err := MigrateDB(DB); err != nil {
		return fmt.Errorf("数据库迁移失败: %v", err)
	}

	return nil
}

// MigrateDB 进行数据库表结构迁移
func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Tag{},
		&models.RecurringSeries{},
		&models.SeriesTag{},
		&models.Task{},
		&models.TaskTag{},
	)
}
