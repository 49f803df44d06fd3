package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicate 唯一索引冲突，同一账本编号已经入库
var ErrDuplicate = errors.New("duplicate record")

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}

// translate 把驱动层的重复键错误统一为 ErrDuplicate
func translate(err error) error {
	if isDuplicateError(err) {
		return ErrDuplicate
	}
	return err
}
