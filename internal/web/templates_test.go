package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Linkfeed/internal/core/feedview"
)

func TestNewTemplates(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)
	require.NotNil(t, templates)
}

func TestTemplatesRender_FeedRows(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	data := FeedPageData{
		Layout: Layout{Title: "Links | new", ReturnPath: "/new/1", Authenticated: true},
		Status: "data",
		Rows: []feedview.Row{
			{ID: "a", URL: "https://a.test", Description: "<b>A</b>", Author: "Ada", Age: "just now", Number: 1, Votes: 2},
		},
		Chronological: true,
		CanNext:       true,
		NextPath:      "/new/2",
	}

	w := httptest.NewRecorder()
	require.NoError(t, templates.RenderStatus(w, http.StatusOK, "feed.html", data))

	body := w.Body.String()
	assert.Contains(t, body, "<title>Links | new</title>")
	assert.Contains(t, body, "&lt;b&gt;A&lt;/b&gt;", "descriptions are escaped")
	assert.Contains(t, body, "2 votes | by Ada just now")
	assert.Contains(t, body, `value="/new/1"`)
	assert.Contains(t, body, `href="/new/2"`)
	assert.NotContains(t, body, "Previous")
}

func TestTemplatesRender_Status(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	require.NoError(t, templates.RenderStatus(w, http.StatusBadGateway, "error.html", ErrorPageData{Message: "down"}))
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestTemplatesRender_NotFound(t *testing.T) {
	templates, err := NewTemplates()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	assert.Error(t, templates.Render(w, "nonexistent.html", nil))
}
