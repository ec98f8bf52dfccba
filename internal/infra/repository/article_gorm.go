package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"app/internal/domain/model"
	domainrepo "app/internal/repository"
)

type articleGormRepository struct {
	db *gorm.DB
}

func NewArticleGormRepository(db *gorm.DB) domainrepo.ArticleRepository {
	return &articleGormRepository{db: db}
}

func (r *articleGormRepository) Create(ctx context.Context, article *model.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return err
	}
	return nil
}

// 所有者チェック用。author_idだけをselectする。
func (r *articleGormRepository) FindOwnerID(ctx context.Context, articleID int64) (int64, error) {
	var a model.Article

	err := r.db.WithContext(ctx).
		Select("author_id").
		Where("id = ?", articleID).
		First(&a).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domainrepo.ErrArticleNotFound
		}
		return 0, err
	}

	return a.AuthorID, nil
}

func (r *articleGormRepository) FindByID(ctx context.Context, articleID int64) (*model.Article, error) {
	var a model.Article

	err := r.db.WithContext(ctx).
		Where("id = ?", articleID).
		First(&a).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainrepo.ErrArticleNotFound
		}
		return nil, err
	}

	return &a, nil
}

func (r *articleGormRepository) Update(ctx context.Context, article *model.Article) error {
	res := r.db.WithContext(ctx).
		Model(&model.Article{}).
		Where("id = ?", article.ID).
		Updates(map[string]interface{}{
			"title": article.Title,
			"body":  article.Body,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrArticleNotFound
	}
	return nil
}

func (r *articleGormRepository) DeleteByID(ctx context.Context, articleID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ?", articleID).
		Delete(&model.Article{})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domainrepo.ErrArticleNotFound
	}
	return nil
}
