// WorkNest APIサーバーのエントリポイント。
// 従業員の作業記録、HRの従業員管理、管理者の給与支払いを担当する。
package main

import (
	"log"

	"worknest/internal/config"
	"worknest/internal/worknest"
)

func main() {
	cfg := config.Load()

	server, err := worknest.NewServer(cfg)
	if err != nil {
		log.Fatalf("WorkNestサーバーの初期化に失敗: %v", err)
	}

	log.Printf("WorkNestサービスを起動します: :%s", cfg.Port)
	if err := server.Run(); err != nil {
		log.Fatalf("WorkNestサービスの起動に失敗: %v", err)
	}
}
