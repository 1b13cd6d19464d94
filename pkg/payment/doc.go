// Package payment は決済プロバイダのPayment Intent APIへのクライアントを提供する。
//
// 金額は最小通貨単位（セント）で渡すこと。Intentの作成は承認オブジェクトの
// 作成のみで送金は行わず、決済の確定はClientSecretを受け取った
// クライアント側の責務となる。Webhookによる突合は行わない。
package payment
