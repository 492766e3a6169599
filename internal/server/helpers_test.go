package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.NewNotFoundError("Blog", 1), http.StatusNotFound},
		{models.NewValidationError("bad"), http.StatusBadRequest},
		{models.NewSelfActionError("self"), http.StatusBadRequest},
		{models.NewUnauthorizedError("nope"), http.StatusForbidden},
		{models.NewForbiddenError("nope"), http.StatusForbidden},
		{models.NewInvalidStateError("state"), http.StatusConflict},
		{models.NewDuplicateReportError(), http.StatusConflict},
		{models.NewDepthExceededError(3), http.StatusUnprocessableEntity},
		{models.NewInternalError(errors.New("boom")), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}

func TestHumanizeParam(t *testing.T) {
	assert.Equal(t, "ID", humanizeParam("id"))
	assert.Equal(t, "blog ID", humanizeParam("blogId"))
	assert.Equal(t, "parent comment ID", humanizeParam("parentCommentId"))
	assert.Equal(t, "slug", humanizeParam("slug"))
}

func TestParseID(t *testing.T) {
	s := &Server{}
	app := fiber.New()
	app.Get("/things/:blogId", func(c *fiber.Ctx) error {
		id, err := s.parseID(c, "blogId")
		if err != nil {
			return nil
		}
		return c.JSON(fiber.Map{"id": id})
	})

	tests := []struct {
		path string
		want int
	}{
		{"/things/7", http.StatusOK},
		{"/things/0", http.StatusBadRequest},
		{"/things/-3", http.StatusBadRequest},
		{"/things/abc", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestParsePage(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		p := parsePage(c)
		return c.JSON(fiber.Map{"page": p.Page, "limit": p.Limit})
	})

	tests := []struct {
		query string
		want  map[string]int
	}{
		{"/?page=3&limit=25", map[string]int{"page": 3, "limit": 25}},
		{"/", map[string]int{"page": 1, "limit": 0}},
		{"/?page=x", map[string]int{"page": 1, "limit": 0}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.query, nil))
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			var got map[string]int
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
			assert.Equal(t, tt.want, got)
		})
	}
}
