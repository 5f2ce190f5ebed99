// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"

	"github.com/paiban/shiftweek/internal/database"
)

// DB 数据库接口，*sql.DB、*sql.Tx 和 database.Tx 都满足
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// Transactor 可以开启事务的连接
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *database.Tx) error) error
}
