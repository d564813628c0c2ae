package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"Linkfeed/internal/core/feed"
	"Linkfeed/internal/core/feedview"
	"Linkfeed/internal/core/identity"
	"Linkfeed/internal/core/links"
	"Linkfeed/internal/core/search"
	"Linkfeed/internal/graphql"
)

// Accounts issues backend credentials
type Accounts interface {
	Login(ctx context.Context, email, password string) (string, error)
	Signup(ctx context.Context, email, password, name string) (string, error)
}

// Handlers provides HTTP handlers for the feed web interface.
type Handlers struct {
	templates *Templates
	feeds     *feedview.Service
	search    *search.Executor
	gate      *identity.Gate
	accounts  Accounts
	poster    links.Poster
	logger    *slog.Logger
}

// NewHandlers creates a new Handlers instance with the provided dependencies.
func NewHandlers(
	templates *Templates,
	feeds *feedview.Service,
	searcher *search.Executor,
	gate *identity.Gate,
	accounts Accounts,
	poster links.Poster,
	logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		templates: templates,
		feeds:     feeds,
		search:    searcher,
		gate:      gate,
		accounts:  accounts,
		poster:    poster,
		logger:    logger,
	}
}

// Layout is the data shared by every page
type Layout struct {
	Title         string
	ReturnPath    string
	Authenticated bool
}

// FeedPageData holds data for the feed template.
type FeedPageData struct {
	Layout
	Status        string
	PrevPath      string
	NextPath      string
	Rows          []feedview.Row
	Chronological bool
	CanPrev       bool
	CanNext       bool
}

// SearchPageData holds data for the search template.
type SearchPageData struct {
	Layout
	Filter string
	Rows   []feedview.Row
	Failed bool
}

// CreatePageData holds data for the submit form.
type CreatePageData struct {
	Layout
	Message     string
	Description string
	URL         string
}

// LoginPageData holds data for the login/signup form.
type LoginPageData struct {
	Layout
	Message string
	Email   string
	Name    string
	Signup  bool
}

// ErrorPageData holds data for the generic error page.
type ErrorPageData struct {
	Layout
	Message string
}

// redirectNavigator pushes routes as HTTP redirects
type redirectNavigator struct {
	w http.ResponseWriter
	r *http.Request
}

func (n redirectNavigator) PushRoute(path string) {
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

// layout takes the viewer resolved once per request, so a page never reads
// the credential store twice
func layout(viewer identity.Viewer, title, returnPath string) Layout {
	return Layout{
		Title:         title,
		ReturnPath:    returnPath,
		Authenticated: viewer.Authenticated,
	}
}

// wantsRefresh reports whether the request asks to bypass the cached feed
func wantsRefresh(r *http.Request) bool {
	if r.URL.Query().Get("refresh") != "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Cache-Control")), "no-cache")
}

func (h *Handlers) render(w http.ResponseWriter, status int, name string, data any) {
	if err := h.templates.RenderStatus(w, status, name, data); err != nil {
		h.logger.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// RootHandler redirects to the first chronological page
// GET /
func (h *Handlers) RootHandler(w http.ResponseWriter, r *http.Request) {
	redirectNavigator{w, r}.PushRoute(feed.PagePath(1))
}

// FeedHandler renders a feed page
// GET /new/{page}, GET /top
func (h *Handlers) FeedHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	pageParam := chi.URLParam(r, "page")

	var page *feedview.Page
	if wantsRefresh(r) {
		page = h.feeds.Refresh(r.Context(), path, pageParam)
	} else {
		page = h.feeds.Load(r.Context(), path, pageParam)
	}

	data := FeedPageData{
		Layout:        layout(h.gate.Viewer(r.Context()), "Links | "+page.Mode.String(), path),
		Status:        page.Status.String(),
		Rows:          page.Rows,
		Chronological: page.Mode == feed.ModeChronological,
		CanPrev:       page.CanPrev,
		CanNext:       page.CanNext,
		PrevPath:      page.PrevPath,
		NextPath:      page.NextPath,
	}

	status := http.StatusOK
	if page.Status == feedview.StatusError {
		status = http.StatusBadGateway
	}
	h.render(w, status, "feed.html", data)
}

// SearchPageHandler renders the search form and the last results
// GET /search
func (h *Handlers) SearchPageHandler(w http.ResponseWriter, r *http.Request) {
	current := h.search.Current()
	h.render(w, http.StatusOK, "search.html", SearchPageData{
		Layout: layout(h.gate.Viewer(r.Context()), "Links | search", "/search"),
		Filter: current.Filter,
		Rows:   h.feeds.Rows(current.Links),
	})
}

// SearchSubmitHandler runs a search for the submitted filter
// POST /search
func (h *Handlers) SearchSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	filter := r.FormValue("filter")

	data := SearchPageData{
		Layout: layout(h.gate.Viewer(r.Context()), "Links | search", "/search"),
		Filter: filter,
	}

	found, err := h.search.Search(r.Context(), filter)
	if err != nil {
		h.logger.Error("search failed", "filter", filter, "error", err)
		data.Failed = true
		h.render(w, http.StatusBadGateway, "search.html", data)
		return
	}

	data.Rows = h.feeds.Rows(found)
	h.render(w, http.StatusOK, "search.html", data)
}

// VoteHandler casts a vote and returns to the page it was cast from
// POST /vote/{linkID}
func (h *Handlers) VoteHandler(w http.ResponseWriter, r *http.Request) {
	viewer := h.gate.Viewer(r.Context())
	if !viewer.Authenticated {
		redirectNavigator{w, r}.PushRoute("/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	returnPath := localPath(r.FormValue("return"))
	path, pageParam := splitPagePath(returnPath)
	linkID := chi.URLParam(r, "linkID")

	if err := h.feeds.Vote(r.Context(), path, pageParam, linkID); err != nil {
		// The page is shown again with its current votes
		h.logger.Warn("vote failed", "link_id", linkID, "error", err)
	}

	redirectNavigator{w, r}.PushRoute(returnPath)
}

// CreatePageHandler renders the submit form
// GET /create
func (h *Handlers) CreatePageHandler(w http.ResponseWriter, r *http.Request) {
	viewer := h.gate.Viewer(r.Context())
	if !viewer.Authenticated {
		redirectNavigator{w, r}.PushRoute("/login")
		return
	}
	h.render(w, http.StatusOK, "create.html", CreatePageData{
		Layout: layout(viewer, "Links | submit", "/create"),
	})
}

// CreateSubmitHandler posts a new link
// POST /create
func (h *Handlers) CreateSubmitHandler(w http.ResponseWriter, r *http.Request) {
	viewer := h.gate.Viewer(r.Context())
	if !viewer.Authenticated {
		redirectNavigator{w, r}.PushRoute("/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	data := CreatePageData{
		Layout:      layout(viewer, "Links | submit", "/create"),
		Description: strings.TrimSpace(r.FormValue("description")),
		URL:         strings.TrimSpace(r.FormValue("url")),
	}

	if err := ValidateSubmission(data.Description, data.URL); err != nil {
		var ve *links.ValidationError
		if errors.As(err, &ve) {
			data.Message = ve.Message
		}
		h.render(w, http.StatusBadRequest, "create.html", data)
		return
	}

	// The new link reaches the cache through the newLink subscription
	created, err := h.poster.PostLink(r.Context(), data.Description, data.URL)
	if err != nil {
		h.logger.Error("failed to post link", "error", err)
		data.Message = "Could not submit the link"
		h.render(w, statusFor(err), "create.html", data)
		return
	}

	h.logger.Info("link posted", "link_id", created.ID)
	redirectNavigator{w, r}.PushRoute(feed.PagePath(1))
}

// LoginPageHandler renders the login form, or the signup form with ?signup=1
// GET /login
func (h *Handlers) LoginPageHandler(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "login.html", LoginPageData{
		Layout: layout(h.gate.Viewer(r.Context()), "Links | login", "/login"),
		Signup: r.URL.Query().Get("signup") != "",
	})
}

// LoginSubmitHandler exchanges credentials for a token and stores it.
// A non-empty name signs up instead of logging in.
// POST /login
func (h *Handlers) LoginSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	viewer := h.gate.Viewer(r.Context())
	data := LoginPageData{
		Layout: layout(viewer, "Links | login", "/login"),
		Email:  strings.TrimSpace(r.FormValue("email")),
		Name:   strings.TrimSpace(r.FormValue("name")),
	}
	data.Signup = data.Name != ""
	password := r.FormValue("password")

	if data.Email == "" || password == "" {
		data.Message = "Email and password are required"
		h.render(w, http.StatusBadRequest, "login.html", data)
		return
	}

	var (
		token string
		err   error
	)
	if data.Signup {
		token, err = h.accounts.Signup(r.Context(), data.Email, password, data.Name)
	} else {
		token, err = h.accounts.Login(r.Context(), data.Email, password)
	}
	if err != nil {
		h.logger.Warn("authentication failed", "email", data.Email, "signup", data.Signup, "error", err)
		data.Message = "Invalid email or password"
		h.render(w, statusFor(err), "login.html", data)
		return
	}

	if err := h.gate.Login(r.Context(), token); err != nil {
		h.logger.Error("failed to store credential", "error", err)
		h.render(w, http.StatusInternalServerError, "error.html", ErrorPageData{
			Layout:  layout(viewer, "Links | error", "/"),
			Message: "Could not save your login",
		})
		return
	}

	redirectNavigator{w, r}.PushRoute("/")
}

// LogoutHandler clears the credential
// POST /logout
func (h *Handlers) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.gate.Logout(r.Context(), redirectNavigator{w, r}); err != nil {
		h.logger.Error("logout failed", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// HealthHandler reports liveness
// GET /health
func (h *Handlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// statusFor maps backend errors to the status of the re-rendered form
func statusFor(err error) int {
	switch {
	case graphql.IsAuthError(err), graphql.IsResponseError(err):
		return http.StatusUnauthorized
	case errors.Is(err, graphql.ErrRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

// localPath returns p when it is a path on this site, otherwise the first feed page
func localPath(p string) string {
	if !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.Contains(p, "\\") {
		return feed.PagePath(1)
	}
	return p
}

// splitPagePath splits "/new/3" into the path and its page parameter
func splitPagePath(p string) (string, string) {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	if len(segments) >= 2 {
		return p, segments[1]
	}
	return p, ""
}
