package db

import (
	"errors"
	"log"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to MySQL. Query logging stays off, the repositories log themselves.
func Open(dsn string) (*gorm.DB, error) {
	g, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Printf("layer=kit component=db method=Open err=%v", err)
		return nil, err
	}
	return g, nil
}

// IsDuplicate reports a MySQL unique key violation (error 1062).
func IsDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// Translate maps driver errors onto the package sentinels so callers can use errors.Is.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errors.Join(ErrNotFound, err)
	case IsDuplicate(err):
		return errors.Join(ErrConflict, err)
	default:
		return errors.Join(ErrInternal, err)
	}
}
