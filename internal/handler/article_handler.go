package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"app/internal/domain/model"
	"app/internal/middleware"
	"app/internal/repository"
)

// 記事のハンドラ。コンテンツ機能そのものは本体の関心外で、
// 所有者・roleゲートとcontentレート制限を通す最小限だけ持つ。
type ArticleHandler struct {
	articles repository.ArticleRepository
}

func NewArticleHandler(articles repository.ArticleRepository) *ArticleHandler {
	return &ArticleHandler{articles: articles}
}

type articleRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// CreateはPOST /articlesのハンドラ。
func (h *ArticleHandler) Create(c echo.Context) error {
	identity := middleware.IdentityFrom(c)
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, errorResponse{Error: "authentication required", Code: "AUTH_REQUIRED"})
	}

	var req articleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "VALIDATION_ERROR"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "title and body are required", Code: "VALIDATION_ERROR"})
	}

	article := &model.Article{
		AuthorID: identity.ID,
		Title:    req.Title,
		Body:     req.Body,
	}

	if err := h.articles.Create(c.Request().Context(), article); err != nil {
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusCreated, article)
}

// GetはGET /articles/:idのハンドラ。未認証でも読める。
func (h *ArticleHandler) Get(c echo.Context) error {
	articleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || articleID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id", Code: "VALIDATION_ERROR"})
	}

	article, err := h.articles.FindByID(c.Request().Context(), articleID)
	if err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "not found", Code: "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, article)
}

// UpdateはPUT /articles/:idのハンドラ。所有者チェックはmiddleware側で済んでいる。
func (h *ArticleHandler) Update(c echo.Context) error {
	articleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || articleID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id", Code: "VALIDATION_ERROR"})
	}

	var req articleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body", Code: "VALIDATION_ERROR"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "title and body are required", Code: "VALIDATION_ERROR"})
	}

	article := &model.Article{ID: articleID, Title: req.Title, Body: req.Body}

	if err := h.articles.Update(c.Request().Context(), article); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "not found", Code: "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "updated"})
}

// DeleteはDELETE /articles/:idのハンドラ。
func (h *ArticleHandler) Delete(c echo.Context) error {
	articleID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || articleID <= 0 {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id", Code: "VALIDATION_ERROR"})
	}

	if err := h.articles.DeleteByID(c.Request().Context(), articleID); err != nil {
		if errors.Is(err, repository.ErrArticleNotFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Error: "not found", Code: "NOT_FOUND"})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error", Code: "INTERNAL"})
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "deleted"})
}
