package db

import (
	"fmt"

	"gin_sqlite_equip_tool/models"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func ConnectDB(path string, log *zap.Logger) *gorm.DB {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database", zap.String("path", path), zap.Error(err))
	}

	if err := Migrate(conn); err != nil {
		log.Fatal("failed to migrate models", zap.Error(err))
	}
	log.Info("database connected", zap.String("path", path))
	return conn
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Asset{}, &models.Loan{}, &models.Category{}, &models.Location{}); err != nil {
		return err
	}

	// 同一備品につき未返却の貸出は最大1件
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_asset
	  ON %s (asset_id)
	  WHERE returned_at IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// 現在の貸出の検索用
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_open_asset_loanedat_desc
	  ON %s (asset_id, loaned_at DESC)
	  WHERE returned_at IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// 非正規化した名称列はマスタ削除ガードと cascade rename が舐めるので索引を張る
	for _, col := range []string{"category", "location"} {
		if err := db.Exec(fmt.Sprintf(`
		  CREATE INDEX IF NOT EXISTS %s_%s
		  ON %s (%s);
		`, models.AssetTable, col, models.AssetTable, col)).Error; err != nil {
			return err
		}
	}

	return nil
}
