package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
)

var ErrArticleNotFound = errors.New("article not found")

// 記事の保存と所有者の取得。
// 本文のCRUDは本リポジトリの関心外で、認可に使う部分だけを約束する。
type ArticleRepository interface {
	Create(ctx context.Context, article *model.Article) error

	//記事の所有者（author_id）を返す。認可ミドルウェアが使う。
	FindOwnerID(ctx context.Context, articleID int64) (int64, error)

	Update(ctx context.Context, article *model.Article) error
	DeleteByID(ctx context.Context, articleID int64) error
	FindByID(ctx context.Context, articleID int64) (*model.Article, error)
}
