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

// MsgCommentInvalid is returned when a comment body is empty.
const MsgCommentInvalid = "comment is missing"

// CommentServiceProvider defines the interface for comment services.
type CommentServiceProvider interface {
	GetCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error)
	CreateComment(ctx context.Context, author models.User, postID, comment string) (models.Comment, error)
	UpdateComment(ctx context.Context, actor models.User, postID, commentID, comment string) (models.Comment, error)
	DeleteComment(ctx context.Context, actor models.User, postID, commentID string) error
}

// CommentService provides business logic for comment management.
type CommentService struct {
	db           *sql.DB
	eventService EventServiceProvider
}

// NewCommentService creates a new CommentService.
func NewCommentService(db *sql.DB, eventService EventServiceProvider) *CommentService {
	return &CommentService{db: db, eventService: eventService}
}

const commentColumns = "id, post_id, user_id, nickname, comment, created_at, updated_at"

// GetCommentsForPost retrieves all comments of a post, newest first. An
// unknown post simply has no comments.
func (s *CommentService) GetCommentsForPost(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+commentColumns+" FROM comments WHERE post_id = ? ORDER BY created_at DESC, rowid DESC", postID)
	if err != nil {
		return nil, internal(err, "failed to query comments")
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, internal(err, "failed to scan comment")
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err, "failed to read comments")
	}
	return comments, nil
}

// getComment retrieves a comment scoped to its post.
func (s *CommentService) getComment(ctx context.Context, postID, commentID string) (models.Comment, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+commentColumns+" FROM comments WHERE id = ? AND post_id = ?", commentID, postID)
	comment, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Comment{}, notFound(ResourceComment, commentID)
		}
		return models.Comment{}, internal(err, "failed to load comment")
	}
	return comment, nil
}

// CreateComment attaches a new comment by author to an existing post.
func (s *CommentService) CreateComment(ctx context.Context, author models.User, postID, text string) (models.Comment, error) {
	if text == "" {
		return models.Comment{}, validationError(MsgCommentInvalid)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM posts WHERE id = ?)", postID).Scan(&exists); err != nil {
		return models.Comment{}, internal(err, "failed to check post")
	}
	if !exists {
		return models.Comment{}, notFound(ResourcePost, postID)
	}

	now := time.Now().UTC()
	comment := models.Comment{
		ID:        uuid.New().String(),
		PostID:    postID,
		UserID:    author.ID,
		Nickname:  author.Nickname,
		Comment:   text,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO comments ("+commentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		comment.ID, comment.PostID, comment.UserID, comment.Nickname, comment.Comment, comment.CreatedAt, comment.UpdatedAt)
	if err != nil {
		return models.Comment{}, internal(err, "failed to create comment")
	}

	recordEvent(ctx, s.eventService, "comment.create", LevelInfo, fmt.Sprintf("%s commented on post %s.", comment.Nickname, postID), &comment.UserID, &comment.ID)
	return comment, nil
}

// UpdateComment replaces the text of a comment the actor owns.
func (s *CommentService) UpdateComment(ctx context.Context, actor models.User, postID, commentID, text string) (models.Comment, error) {
	if text == "" {
		return models.Comment{}, validationError(MsgCommentInvalid)
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE comments SET comment = ?, updated_at = ? WHERE id = ? AND post_id = ? AND user_id = ?",
		text, time.Now().UTC(), commentID, postID, actor.ID)
	if err != nil {
		return models.Comment{}, internal(err, "failed to update comment")
	}
	if err := s.checkWrite(ctx, res, postID, commentID, actor.ID); err != nil {
		return models.Comment{}, err
	}

	recordEvent(ctx, s.eventService, "comment.update", LevelInfo, fmt.Sprintf("Comment %s updated.", commentID), &actor.ID, &commentID)
	return s.getComment(ctx, postID, commentID)
}

// DeleteComment removes a comment the actor owns.
func (s *CommentService) DeleteComment(ctx context.Context, actor models.User, postID, commentID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM comments WHERE id = ? AND post_id = ? AND user_id = ?", commentID, postID, actor.ID)
	if err != nil {
		return internal(err, "failed to delete comment")
	}
	if err := s.checkWrite(ctx, res, postID, commentID, actor.ID); err != nil {
		return err
	}

	recordEvent(ctx, s.eventService, "comment.delete", LevelWarn, fmt.Sprintf("Comment %s was deleted.", commentID), &actor.ID, &commentID)
	return nil
}

func (s *CommentService) checkWrite(ctx context.Context, res sql.Result, postID, commentID, actorID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return internal(err, "failed to read affected rows")
	}
	if n > 0 {
		allowed(ResourceComment)
		return nil
	}

	var owner string
	err = s.db.QueryRowContext(ctx, "SELECT user_id FROM comments WHERE id = ? AND post_id = ?", commentID, postID).Scan(&owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return denied(ResourceComment, commentID, Ownership{}, actorID)
	case err != nil:
		return internal(err, "failed to load comment owner")
	}
	return denied(ResourceComment, commentID, Ownership{Exists: true, OwnerID: owner}, actorID)
}

func scanComment(scanner interface{ Scan(...interface{}) error }) (models.Comment, error) {
	var comment models.Comment
	err := scanner.Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Nickname, &comment.Comment, &comment.CreatedAt, &comment.UpdatedAt)
	return comment, err
}
