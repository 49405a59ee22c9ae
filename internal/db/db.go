package db

import (
	"fmt"
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/suPer8Hu/talent-market/internal/chat"
	"github.com/suPer8Hu/talent-market/internal/models"
	"github.com/suPer8Hu/talent-market/internal/provider"
	"github.com/suPer8Hu/talent-market/internal/request"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// Connect opens MySQL, or a SQLite file when dsn starts with "sqlite:".
func Connect(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dialector = gormsqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = mysql.Open(dsn)
	}
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return gdb, nil
}

func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&models.User{},
		&provider.Provider{},
		&provider.ServiceCard{},
		&provider.Review{},
		&provider.ProfileView{},
		&request.ContactRequest{},
		&chat.Record{},
	)
}
