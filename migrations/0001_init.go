package migrations

import (
	"context"
	"database/sql"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/travel_app/internal/models"
)

func gormTx(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gdb, err := gormTx(tx)
	if err != nil {
		return err
	}
	return gdb.WithContext(ctx).AutoMigrate(models.All()...)
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gdb, err := gormTx(tx)
	if err != nil {
		return err
	}
	all := models.All()
	for i := len(all) - 1; i >= 0; i-- {
		if err := gdb.WithContext(ctx).Migrator().DropTable(all[i]); err != nil {
			return err
		}
	}
	return nil
}
