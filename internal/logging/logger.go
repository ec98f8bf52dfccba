package logging

import (
	"go.uber.org/zap"
)

// New はアプリ用のzapロガーを作る。prodはJSON、それ以外は開発向け出力。
func New(goEnv string) (*zap.Logger, error) {
	if goEnv == "prod" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// Security はセキュリティ専用ロガーを返す。
// 認証失敗・権限拒否・レート制限などは通常のエラーと分けて記録する。
func Security(logger *zap.Logger) *zap.Logger {
	return logger.Named("security")
}
