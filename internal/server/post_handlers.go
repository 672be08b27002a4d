package server

import (
	"log/slog"
	"strings"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// CreatePostRequest is the payload for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdatePostRequest is the payload for a partial post update. Empty fields
// are left unchanged.
type UpdatePostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// GetPosts returns a page of posts ordered newest first. An empty result is a
// 404 rather than an empty list.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	skip, limit := parsePagination(c)

	posts, err := s.posts.List(c.Context(), limit, skip)
	if err != nil {
		return respondStoreError(c, err)
	}
	if len(posts) == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundMessageError("No posts found"))
	}

	return c.JSON(posts)
}

// GetPost returns a single post by ID.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(post)
}

// CreatePost creates a post owned by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if strings.TrimSpace(req.Title) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}

	post := &models.Post{
		Title:   req.Title,
		Content: req.Content,
		UserID:  user.ID,
	}
	if err := s.posts.Create(c.Context(), post); err != nil {
		observability.PostOperations.WithLabelValues("create", "error").Inc()
		return respondStoreError(c, err)
	}
	post.User = *user

	observability.PostOperations.WithLabelValues("create", "success").Inc()
	middleware.Logger.InfoContext(c.Context(), "post created",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("user_id", uint64(user.ID)))

	return c.JSON(post)
}

// UpdatePost applies a partial update to a post the authenticated user owns.
// A missing post is a 404; someone else's post is a 403.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req UpdatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	post, err := s.posts.GetByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if !s.gate.AuthorizeOwner(user, post) {
		observability.PostOperations.WithLabelValues("update", "forbidden").Inc()
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Not authorized to update this post"))
	}

	// Only the fields the client actually sent are applied.
	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Content != "" {
		post.Content = req.Content
	}

	if err := s.posts.Update(c.Context(), post); err != nil {
		observability.PostOperations.WithLabelValues("update", "error").Inc()
		return respondStoreError(c, err)
	}

	observability.PostOperations.WithLabelValues("update", "success").Inc()
	return c.JSON(post)
}

// DeletePost permanently removes a post the authenticated user owns.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.posts.GetByID(c.Context(), id)
	if err != nil {
		return respondStoreError(c, err)
	}
	if !s.gate.AuthorizeOwner(user, post) {
		observability.PostOperations.WithLabelValues("delete", "forbidden").Inc()
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Not authorized to delete this post"))
	}

	if err := s.posts.Delete(c.Context(), post.ID); err != nil {
		observability.PostOperations.WithLabelValues("delete", "error").Inc()
		return respondStoreError(c, err)
	}

	observability.PostOperations.WithLabelValues("delete", "success").Inc()
	middleware.Logger.InfoContext(c.Context(), "post deleted",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("user_id", uint64(user.ID)))

	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// SearchPosts returns posts whose title or content contains the query
// substring, case-insensitively.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Query parameter 'query' is required"))
	}

	skip, limit := parsePagination(c)

	posts, err := s.posts.Search(c.Context(), query, limit, skip)
	if err != nil {
		return respondStoreError(c, err)
	}
	if len(posts) == 0 {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundMessageError("No posts found matching the search criteria"))
	}

	return c.JSON(posts)
}

// GetUserStatistics reports how many posts a user has published since the
// first day of the current month.
func (s *Server) GetUserStatistics(c *fiber.Ctx) error {
	userID, err := parseID(c, "userId")
	if err != nil {
		return nil
	}

	if _, err := s.users.GetByID(c.Context(), userID); err != nil {
		return respondStoreError(c, err)
	}

	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	count, err := s.posts.CountSince(c.Context(), userID, monthStart)
	if err != nil {
		return respondStoreError(c, err)
	}

	return c.JSON(fiber.Map{"average_posts_per_month": count})
}
