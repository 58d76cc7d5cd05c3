package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/blog-be/internal/models"
)

// Public messages for post input failures.
const (
	MsgPostBodyInvalid    = "request body is malformed"
	MsgPostTitleInvalid   = "post title is missing"
	MsgPostContentInvalid = "post content is missing"
)

// PostServiceProvider defines the interface for post services.
type PostServiceProvider interface {
	GetAllPosts(ctx context.Context) ([]models.Post, error)
	GetPostByID(ctx context.Context, id string) (models.Post, error)
	CreatePost(ctx context.Context, author models.User, title, content string) (models.Post, error)
	UpdatePost(ctx context.Context, actor models.User, id, title, content string) (models.Post, error)
	DeletePost(ctx context.Context, actor models.User, id string) error
}

// PostService provides business logic for post management.
type PostService struct {
	db           *sql.DB
	eventService EventServiceProvider
}

// NewPostService creates a new PostService.
func NewPostService(db *sql.DB, eventService EventServiceProvider) *PostService {
	return &PostService{db: db, eventService: eventService}
}

const postColumns = "id, user_id, nickname, title, content, created_at, updated_at"

// ValidatePostInput checks that both title and content are present.
func ValidatePostInput(title, content string) error {
	switch {
	case title == "" && content == "":
		return validationError(MsgPostBodyInvalid)
	case title == "":
		return validationError(MsgPostTitleInvalid)
	case content == "":
		return validationError(MsgPostContentInvalid)
	}
	return nil
}

// GetAllPosts retrieves every post, newest first.
func (s *PostService) GetAllPosts(ctx context.Context) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+postColumns+" FROM posts ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, internal(err, "failed to query posts")
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, internal(err, "failed to scan post")
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err, "failed to read posts")
	}
	return posts, nil
}

// GetPostByID retrieves a single post by its ID.
func (s *PostService) GetPostByID(ctx context.Context, id string) (models.Post, error) {
	post, err := scanPost(s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Post{}, notFound(ResourcePost, id)
		}
		return models.Post{}, internal(err, "failed to load post")
	}
	return post, nil
}

// CreatePost stores a new post owned by author.
func (s *PostService) CreatePost(ctx context.Context, author models.User, title, content string) (models.Post, error) {
	if err := ValidatePostInput(title, content); err != nil {
		return models.Post{}, err
	}

	now := time.Now().UTC()
	post := models.Post{
		ID:        uuid.New().String(),
		UserID:    author.ID,
		Nickname:  author.Nickname,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		post.ID, post.UserID, post.Nickname, post.Title, post.Content, post.CreatedAt, post.UpdatedAt)
	if err != nil {
		return models.Post{}, internal(err, "failed to create post")
	}

	recordEvent(ctx, s.eventService, "post.create", LevelInfo, fmt.Sprintf("Post '%s' created by %s.", post.Title, post.Nickname), &post.UserID, &post.ID)
	return post, nil
}

// UpdatePost replaces title and content of a post the actor owns. The
// ownership check and the write are one statement.
func (s *PostService) UpdatePost(ctx context.Context, actor models.User, id, title, content string) (models.Post, error) {
	if err := ValidatePostInput(title, content); err != nil {
		return models.Post{}, err
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ? AND user_id = ?",
		title, content, time.Now().UTC(), id, actor.ID)
	if err != nil {
		return models.Post{}, internal(err, "failed to update post")
	}
	if err := s.checkWrite(ctx, res, id, actor.ID); err != nil {
		return models.Post{}, err
	}

	recordEvent(ctx, s.eventService, "post.update", LevelInfo, fmt.Sprintf("Post '%s' updated.", title), &actor.ID, &id)
	return s.GetPostByID(ctx, id)
}

// DeletePost removes a post the actor owns, together with its comments.
func (s *PostService) DeletePost(ctx context.Context, actor models.User, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM posts WHERE id = ? AND user_id = ?", id, actor.ID)
	if err != nil {
		return internal(err, "failed to delete post")
	}
	if err := s.checkWrite(ctx, res, id, actor.ID); err != nil {
		return err
	}

	recordEvent(ctx, s.eventService, "post.delete", LevelWarn, fmt.Sprintf("Post %s was deleted.", id), &actor.ID, &id)
	return nil
}

// checkWrite turns a conditional write result into an access decision.
func (s *PostService) checkWrite(ctx context.Context, res sql.Result, id, actorID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return internal(err, "failed to read affected rows")
	}
	if n > 0 {
		allowed(ResourcePost)
		return nil
	}

	target, err := s.ownership(ctx, id)
	if err != nil {
		return err
	}
	return denied(ResourcePost, id, target, actorID)
}

func (s *PostService) ownership(ctx context.Context, id string) (Ownership, error) {
	var owner string
	err := s.db.QueryRowContext(ctx, "SELECT user_id FROM posts WHERE id = ?", id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Ownership{}, nil
		}
		return Ownership{}, internal(err, "failed to load post owner")
	}
	return Ownership{Exists: true, OwnerID: owner}, nil
}

func scanPost(scanner interface{ Scan(...interface{}) error }) (models.Post, error) {
	var post models.Post
	err := scanner.Scan(&post.ID, &post.UserID, &post.Nickname, &post.Title, &post.Content, &post.CreatedAt, &post.UpdatedAt)
	return post, err
}
