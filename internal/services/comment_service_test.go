package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/blog-be/internal/services"
)

func TestCommentService_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner1", "pass1234")
	other := f.signup(t, "other1", "pass1234")

	post, err := f.posts.CreatePost(ctx, owner, "t", "c")
	require.NoError(t, err)

	comment, err := f.comments.CreateComment(ctx, other, post.ID, "first!")
	require.NoError(t, err)
	assert.Equal(t, post.ID, comment.PostID)
	assert.Equal(t, other.ID, comment.UserID)
	assert.Equal(t, "other1", comment.Nickname)

	t.Run("post owner cannot edit someone else's comment", func(t *testing.T) {
		_, err := f.comments.UpdateComment(ctx, owner, post.ID, comment.ID, "edited")
		assert.Equal(t, services.CodeForbidden, services.ErrorCode(err))

		err = f.comments.DeleteComment(ctx, owner, post.ID, comment.ID)
		assert.Equal(t, services.CodeForbidden, services.ErrorCode(err))

		comments, err := f.comments.GetCommentsForPost(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, comments, 1)
		assert.Equal(t, "first!", comments[0].Comment)
	})

	t.Run("comment is scoped to its post", func(t *testing.T) {
		otherPost, err := f.posts.CreatePost(ctx, other, "t2", "c2")
		require.NoError(t, err)

		_, err = f.comments.UpdateComment(ctx, other, otherPost.ID, comment.ID, "edited")
		assert.Equal(t, services.CodeNotFound, services.ErrorCode(err))
	})

	t.Run("author edits and deletes", func(t *testing.T) {
		updated, err := f.comments.UpdateComment(ctx, other, post.ID, comment.ID, "edited")
		require.NoError(t, err)
		assert.Equal(t, "edited", updated.Comment)

		require.NoError(t, f.comments.DeleteComment(ctx, other, post.ID, comment.ID))

		err = f.comments.DeleteComment(ctx, other, post.ID, comment.ID)
		assert.Equal(t, services.CodeNotFound, services.ErrorCode(err))
	})

	assert.Subset(t, f.publisher.types(), []string{"comment.create", "comment.update", "comment.delete"})
}

func TestCommentService_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "abc123", "abcd1234")

	_, err := f.comments.CreateComment(ctx, author, "missing", "hello")
	assert.Equal(t, services.CodeNotFound, services.ErrorCode(err), "cannot comment on a missing post")

	post, err := f.posts.CreatePost(ctx, author, "t", "c")
	require.NoError(t, err)

	_, err = f.comments.CreateComment(ctx, author, post.ID, "")
	assert.Equal(t, services.CodeValidation, services.ErrorCode(err))

	_, err = f.comments.UpdateComment(ctx, author, post.ID, "whatever", "")
	assert.Equal(t, services.CodeValidation, services.ErrorCode(err))
}

func TestCommentService_ListNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "abc123", "abcd1234")
	post, err := f.posts.CreatePost(ctx, author, "t", "c")
	require.NoError(t, err)

	a, err := f.comments.CreateComment(ctx, author, post.ID, "a")
	require.NoError(t, err)
	b, err := f.comments.CreateComment(ctx, author, post.ID, "b")
	require.NoError(t, err)

	comments, err := f.comments.GetCommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, b.ID, comments[0].ID)
	assert.Equal(t, a.ID, comments[1].ID)

	none, err := f.comments.GetCommentsForPost(ctx, "missing")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestCommentService_ConcurrentNonOwnerEditsFail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "author1", "pass1234")
	other := f.signup(t, "other1", "pass1234")

	post, err := f.posts.CreatePost(ctx, author, "t", "c")
	require.NoError(t, err)
	comment, err := f.comments.CreateComment(ctx, author, post.ID, "mine")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := f.comments.UpdateComment(ctx, other, post.ID, comment.ID, "stolen")
			errs <- err
		}()
		go func() {
			defer wg.Done()
			_, err := f.comments.UpdateComment(ctx, author, post.ID, comment.ID, "mine")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var forbidden int
	for err := range errs {
		if err != nil {
			assert.Equal(t, services.CodeForbidden, services.ErrorCode(err))
			forbidden++
		}
	}
	assert.Equal(t, 10, forbidden)

	comments, err := f.comments.GetCommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "mine", comments[0].Comment)
}
