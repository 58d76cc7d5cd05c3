package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/blog-be/internal/services"
)

func TestPostService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "abc123", "abcd1234")

	first, err := f.posts.CreatePost(ctx, author, "first", "one")
	require.NoError(t, err)
	second, err := f.posts.CreatePost(ctx, author, "second", "two")
	require.NoError(t, err)

	assert.Equal(t, author.ID, first.UserID)
	assert.Equal(t, "abc123", first.Nickname)

	posts, err := f.posts.GetAllPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID, "newest first")
	assert.Equal(t, first.ID, posts[1].ID)

	got, err := f.posts.GetPostByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "one", got.Content)
	assert.Equal(t, first.CreatedAt.Unix(), got.CreatedAt.Unix())
}

func TestPostService_EmptyListIsNotNil(t *testing.T) {
	f := newFixture(t)
	posts, err := f.posts.GetAllPosts(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestPostService_CreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.signup(t, "abc123", "abcd1234")

	tests := []struct {
		name, title, content, wantMsg string
	}{
		{"both missing", "", "", services.MsgPostBodyInvalid},
		{"title missing", "", "c", services.MsgPostTitleInvalid},
		{"content missing", "t", "", services.MsgPostContentInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.posts.CreatePost(ctx, author, tt.title, tt.content)
			require.Error(t, err)
			assert.Equal(t, services.CodeValidation, services.ErrorCode(err))
			assert.Equal(t, tt.wantMsg, oops.GetPublic(err, ""))
		})
	}
}

func TestPostService_GetMissing(t *testing.T) {
	f := newFixture(t)
	_, err := f.posts.GetPostByID(context.Background(), "missing")
	assert.Equal(t, services.CodeNotFound, services.ErrorCode(err))
}

func TestPostService_OwnershipOnUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner1", "pass1234")
	other := f.signup(t, "other1", "pass1234")

	post, err := f.posts.CreatePost(ctx, owner, "t", "c")
	require.NoError(t, err)

	t.Run("non-owner is forbidden and nothing changes", func(t *testing.T) {
		before := testutil.ToFloat64(services.AccessCounter(services.ResourcePost, services.DecisionForbidden))

		_, err := f.posts.UpdatePost(ctx, other, post.ID, "hijacked", "x")
		require.Error(t, err)
		assert.Equal(t, services.CodeForbidden, services.ErrorCode(err))

		got, err := f.posts.GetPostByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "t", got.Title)
		assert.Equal(t, "c", got.Content)

		after := testutil.ToFloat64(services.AccessCounter(services.ResourcePost, services.DecisionForbidden))
		assert.Equal(t, before+1, after)
	})

	t.Run("owner updates", func(t *testing.T) {
		updated, err := f.posts.UpdatePost(ctx, owner, post.ID, "t2", "c2")
		require.NoError(t, err)
		assert.Equal(t, "t2", updated.Title)
		assert.Equal(t, "c2", updated.Content)
		assert.False(t, updated.UpdatedAt.Before(post.UpdatedAt))
	})

	t.Run("validation precedes ownership", func(t *testing.T) {
		_, err := f.posts.UpdatePost(ctx, other, post.ID, "", "c")
		assert.Equal(t, services.CodeValidation, services.ErrorCode(err))
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := f.posts.UpdatePost(ctx, owner, "missing", "t", "c")
		assert.Equal(t, services.CodeNotFound, services.ErrorCode(err))
	})
}

func TestPostService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner1", "pass1234")
	other := f.signup(t, "other1", "pass1234")

	post, err := f.posts.CreatePost(ctx, owner, "t", "c")
	require.NoError(t, err)
	_, err = f.comments.CreateComment(ctx, other, post.ID, "nice")
	require.NoError(t, err)

	err = f.posts.DeletePost(ctx, other, post.ID)
	assert.Equal(t, services.CodeForbidden, services.ErrorCode(err))

	require.NoError(t, f.posts.DeletePost(ctx, owner, post.ID))

	_, err = f.posts.GetPostByID(ctx, post.ID)
	assert.Equal(t, services.CodeNotFound, services.ErrorCode(err))

	comments, err := f.comments.GetCommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments, "comments go with their post")

	err = f.posts.DeletePost(ctx, owner, post.ID)
	assert.Equal(t, services.CodeNotFound, services.ErrorCode(err), "deleting twice is not a silent success")

	assert.Contains(t, f.publisher.types(), "post.delete")
}

func TestPostService_ConcurrentWritersNeverLetNonOwnerWin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.signup(t, "owner1", "pass1234")
	other := f.signup(t, "other1", "pass1234")

	post, err := f.posts.CreatePost(ctx, owner, "t", "c")
	require.NoError(t, err)

	const rounds = 20
	var wg sync.WaitGroup
	ownerErrs := make(chan error, rounds)
	otherErrs := make(chan error, 2*rounds)
	for i := 0; i < rounds; i++ {
		wg.Add(3)
		go func(i int) {
			defer wg.Done()
			_, err := f.posts.UpdatePost(ctx, owner, post.ID, fmt.Sprintf("owner-%d", i), "c")
			ownerErrs <- err
		}(i)
		go func() {
			defer wg.Done()
			_, err := f.posts.UpdatePost(ctx, other, post.ID, "hijacked", "x")
			otherErrs <- err
		}()
		go func() {
			defer wg.Done()
			otherErrs <- f.posts.DeletePost(ctx, other, post.ID)
		}()
	}
	wg.Wait()
	close(ownerErrs)
	close(otherErrs)

	for err := range ownerErrs {
		assert.NoError(t, err)
	}
	for err := range otherErrs {
		assert.Equal(t, services.CodeForbidden, services.ErrorCode(err))
	}

	got, err := f.posts.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "hijacked", got.Title)
	assert.Equal(t, "c", got.Content)
}
