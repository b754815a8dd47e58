package postgresql

import (
	"database/sql"
	"sync"

	_ "github.com/lib/pq"

	"github.com/mangogik/catalog-hotel/config"
)

var (
	once sync.Once
	db   *sql.DB
)

func GetDatabase() *sql.DB {
	once.Do(func() {
		var err error
		db, err = sql.Open("postgres", config.Get().Postgres.DSN)
		if err != nil {
			panic(err)
		}

		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
	})

	return db
}
