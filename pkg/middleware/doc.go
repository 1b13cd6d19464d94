// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// JWT認証トークンの検証（認証）、DBを参照するロールゲート（認可）、
// パニックリカバリ、CORS設定を含む。認証と認可は別のミドルウェアとして
// 分離しており、保護ルートではJWTAuth→RequireRoleの順に適用する。
package middleware
