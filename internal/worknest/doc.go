// Package worknest はWorkNest HR管理APIの内部実装を提供する。
//
// 従業員の作業記録、HRによる確認・給与支払いリクエスト、管理者による
// 承認・支払い実行、公開コンテンツの配信を担当する。認証はJWT、認可は
// リクエスト毎のDB参照によるロールゲートで行い、トークン内のロールは
// 信用しない。給与支払いは同一従業員・同一期間につき最大1回であることを
// ストレージ層のユニークインデックスで保証する。
package worknest
