package worknest

import (
	"database/sql"
	"embed"

	"worknest/pkg/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// initSchema はマイグレーションを実行してスキーマを適用する。
// 給与支払いの重複防止に必要なユニークインデックスもここで作成される。
func initSchema(db *sql.DB) error {
	return migration.Run(db, migrationsFS, "migrations")
}
