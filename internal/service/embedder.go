package service

import "context"

// Embedder はテキストを密ベクトルに変換するクライアントの抽象です。
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimensions() int
}
