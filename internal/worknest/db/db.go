// Package db はWorkNest APIのSQLiteデータベースへの薄いクエリ層を提供する。
//
// 汎用的なクエリビルダは持たず、ハンドラが必要とする形のクエリのみを
// メソッドとして公開する。一意制約違反はIsUniqueViolationで判定でき、
// 給与支払いの重複防止はアプリケーション層の事前チェックではなく
// ストレージ層のユニークインデックスで保証する。
package db

import (
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ロール定数。usersテーブルのrole列が取り得る値。
const (
	// RoleEmployee は一般従業員。
	RoleEmployee = "employee"
	// RoleHR は人事担当者。
	RoleHR = "hr"
	// RoleAdmin は管理者。
	RoleAdmin = "admin"
)

// ステータス定数。usersテーブルのstatus列が取り得る値。
const (
	// StatusActive は在籍中。
	StatusActive = "active"
	// StatusFired は解雇済み。解雇は取り消せない。
	StatusFired = "fired"
)

// 給与支払いリクエストのステータス定数。
const (
	// RequestPending は支払い待ち。
	RequestPending = "pending"
	// RequestPaid は支払い済み。
	RequestPaid = "paid"
)

// ErrInactive は解雇済みユーザーへの操作を表すセンチネルエラー。
var ErrInactive = errors.New("解雇済みユーザー")

// Queries はデータベースへのクエリ実行オブジェクト。
// *sql.DBは並行利用に安全であるため、Queriesも複数goroutineから共有できる。
type Queries struct {
	db *sql.DB
}

// New は新しいクエリ実行オブジェクトを生成する。
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

// IsUniqueViolation はエラーがSQLiteの一意制約違反かどうかを判定する。
// 給与支払いの同時リクエスト競合では2番目のINSERTがこのエラーになる。
func IsUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	// ドライバがコードを保持しない経路のためのフォールバック
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
