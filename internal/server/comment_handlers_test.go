package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/service"
	"inkwell/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentThreadOverHTTP(t *testing.T) {
	ts := newTestServer(t, nil)
	readerTok := ts.token(t, ts.reader)
	authorTok := ts.token(t, ts.author)
	blog := testutil.CreateBlog(t, ts.db, ts.author.ID, models.BlogStatusApproved)

	var top service.CommentView
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/comments",
		map[string]any{"blog_id": blog.ID, "content": "Great read"}, readerTok, &top))
	assert.Zero(t, top.Depth)

	parent := top
	for depth := 1; depth <= 3; depth++ {
		var reply service.CommentView
		require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/comments", map[string]any{
			"blog_id":           blog.ID,
			"content":           fmt.Sprintf("reply at depth %d", depth),
			"parent_comment_id": parent.ID,
		}, authorTok, &reply))
		assert.Equal(t, depth, reply.Depth)
		parent = reply
	}

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusUnprocessableEntity, ts.do(t, http.MethodPost, "/api/comments", map[string]any{
		"blog_id":           blog.ID,
		"content":           "one level too deep",
		"parent_comment_id": parent.ID,
	}, readerTok, &errBody))
	assert.Equal(t, models.CodeDepthExceeded, errBody.Code)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, "/api/comments",
		map[string]any{"blog_id": blog.ID, "content": "   "}, readerTok, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPost, "/api/comments",
		map[string]any{"blog_id": 9999, "content": "hello"}, readerTok, nil))
	assert.Equal(t, http.StatusUnauthorized, ts.do(t, http.MethodPost, "/api/comments",
		map[string]any{"blog_id": blog.ID, "content": "hello"}, "", nil))

	var page service.CommentThreadPage
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, fmt.Sprintf("/api/comments/blog/%d", blog.ID), nil, "", &page))
	require.Len(t, page.Comments, 1)
	assert.Equal(t, top.ID, page.Comments[0].ID)
	assert.Equal(t, "reader", page.Comments[0].Author.Username)
	require.Len(t, page.Comments[0].Replies, 1)

	var replies []service.CommentView
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, fmt.Sprintf("/api/comments/%d/replies", top.ID), nil, "", &replies))
	assert.Len(t, replies, 1)

	var mine service.CommentPage
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/comments/me", nil, authorTok, &mine))
	assert.Equal(t, int64(3), mine.Pagination.Total)

	draft := testutil.CreateBlog(t, ts.db, ts.author.ID, models.BlogStatusDraft)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, fmt.Sprintf("/api/comments/blog/%d", draft.ID), nil, "", nil))
}

func TestCommentEditDeleteAndReport(t *testing.T) {
	ts := newTestServer(t, nil)
	readerTok := ts.token(t, ts.reader)
	authorTok := ts.token(t, ts.author)
	blog := testutil.CreateBlog(t, ts.db, ts.author.ID, models.BlogStatusApproved)
	comment := testutil.CreateComment(t, ts.db, ts.reader.ID, blog.ID, nil)
	path := fmt.Sprintf("/api/comments/%d", comment.ID)

	var edited service.CommentView
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPut, path, map[string]any{"content": "edited"}, readerTok, &edited))
	assert.Equal(t, "edited", edited.Content)
	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodPut, path, map[string]any{"content": "hijack"}, authorTok, nil))

	var errBody models.ErrorResponse
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodPost, path+"/report", nil, readerTok, &errBody))
	assert.Equal(t, models.CodeSelfAction, errBody.Code)

	require.Equal(t, http.StatusOK, ts.do(t, http.MethodPost, path+"/report", map[string]any{"reason": "spam"}, authorTok, nil))
	assert.Equal(t, http.StatusConflict, ts.do(t, http.MethodPost, path+"/report", nil, authorTok, &errBody))
	assert.Equal(t, models.CodeDuplicateReport, errBody.Code)

	var reported service.CommentPage
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/admin/comments/reported", nil, ts.token(t, ts.admin), &reported))
	require.Len(t, reported.Comments, 1)
	require.Len(t, reported.Comments[0].Reports, 1)
	assert.Equal(t, "spam", reported.Comments[0].Reports[0].Reason)

	assert.Equal(t, http.StatusForbidden, ts.do(t, http.MethodDelete, path, nil, authorTok, nil))
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodDelete, path, nil, readerTok, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodDelete, path, nil, readerTok, nil))
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodPut, path, map[string]any{"content": "again"}, readerTok, nil))
}

func TestCommentResponsesHideAccountFields(t *testing.T) {
	ts := newTestServer(t, nil)
	readerTok := ts.token(t, ts.reader)
	blog := testutil.CreateBlog(t, ts.db, ts.author.ID, models.BlogStatusApproved)

	var created json.RawMessage
	require.Equal(t, http.StatusCreated, ts.do(t, http.MethodPost, "/api/comments",
		map[string]any{"blog_id": blog.ID, "content": "Great read"}, readerTok, &created))
	assert.NotContains(t, string(created), ts.reader.Email)

	var listing json.RawMessage
	require.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, fmt.Sprintf("/api/comments/blog/%d", blog.ID), nil, "", &listing))
	body := string(listing)
	assert.NotContains(t, body, ts.reader.Email)
	assert.NotContains(t, body, `"email"`)
	assert.NotContains(t, body, `"role"`)
	assert.Contains(t, body, `"replies":[]`)
}
