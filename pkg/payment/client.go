package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrProvider は決済プロバイダ側の失敗を表すセンチネルエラー。
// ネットワークエラーとプロバイダのエラー応答の両方をこのエラーでラップする。
var ErrProvider = errors.New("決済プロバイダエラー")

// Client は決済プロバイダのPayment Intent APIへのHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はプロバイダAPIのベースURL（例: "https://api.stripe.com"）。
	baseURL string
	// secretKey はプロバイダAPIのシークレットキー。
	secretKey string
}

// Intent はプロバイダが作成したPayment Intentを表す。
// ClientSecretはクライアント側の決済確定に使用し、サーバー側では保存しない。
type Intent struct {
	// ID はプロバイダ側の参照ID。
	ID string `json:"id"`
	// ClientSecret はクライアントが決済を確定するためのシークレット。
	ClientSecret string `json:"client_secret"`
}

// New は新しい決済プロバイダクライアントを生成する。
// timeoutに0以下を指定した場合は30秒を使用する。
func New(baseURL, secretKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		secretKey:  secretKey,
	}
}

// CreateIntent はPayment Intentを作成する。
// amountMinorUnitsは最小通貨単位（USDの場合はセント）で、呼び出し側で
// 変換・検証済みであること。この呼び出し自体は送金せず、承認オブジェクトを
// 作成するのみ。失敗時はErrProviderをラップしたエラーを返す。
func (c *Client) CreateIntent(ctx context.Context, amountMinorUnits int64, currency string, metadata map[string]string) (*Intent, error) {
	if amountMinorUnits <= 0 {
		return nil, fmt.Errorf("金額が不正です: %d", amountMinorUnits)
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountMinorUnits, 10))
	form.Set("currency", currency)
	form.Set("payment_method_types[]", "card")
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/payment_intents", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: リクエスト送信に失敗: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: status=%d, body=%s", ErrProvider, resp.StatusCode, string(respBody))
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("%w: レスポンスのデシリアライズに失敗: %v", ErrProvider, err)
	}
	if intent.ID == "" {
		return nil, fmt.Errorf("%w: 参照IDが空のレスポンス", ErrProvider)
	}

	return &intent, nil
}
