// Package web provides the embedded web UI for browsing and submitting
// calculator evaluations.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"
	"github.com/lemonberrylabs/calc/pkg/expr"
	"github.com/lemonberrylabs/calc/pkg/store"
	"github.com/lemonberrylabs/calc/pkg/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves the web UI pages.
type Handler struct {
	store     *store.Store
	maxLength int
	funcMap   template.FuncMap
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler over the evaluation history.
func New(s *store.Store, maxLength int) *Handler {
	return &Handler{
		store:     s,
		maxLength: maxLength,
		funcMap: template.FuncMap{
			"timeAgo":    timeAgo,
			"formatTime": formatTime,
			"stateClass": stateClass,
			"stateIcon":  stateIcon,
			"truncate":   truncate,
			"join":       strings.Join,
		},
	}
}

func (h *Handler) render(c *fiber.Ctx, status int, page string, navActive string, data interface{}) error {
	// Each page is parsed with the layout on its own so their define blocks
	// do not collide.
	tmpl, err := template.New("").Funcs(h.funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
	if err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pageData{NavActive: navActive, Data: data}); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.history)
	app.Post("/ui/evaluations", h.submit)
	app.Get("/ui/evaluations/:evaluation", h.evaluationDetail)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type historyContent struct {
	Evaluations    []*store.Evaluation
	SucceededCount int
	FailedCount    int
	Expression     string
	Error          *types.Error
	ErrorMessage   string
}

type evaluationDetailContent struct {
	Evaluation *store.Evaluation
}

type notFoundContent struct {
	Message string
}

// --- Page Handlers ---

func (h *Handler) historyContent() historyContent {
	evals := h.store.List()

	var content historyContent
	// newest first
	for i := len(evals) - 1; i >= 0; i-- {
		ev := evals[i]
		content.Evaluations = append(content.Evaluations, ev)
		switch ev.State {
		case store.EvaluationSucceeded:
			content.SucceededCount++
		case store.EvaluationFailed:
			content.FailedCount++
		}
	}
	return content
}

func (h *Handler) history(c *fiber.Ctx) error {
	return h.render(c, 200, "history.html", "history", h.historyContent())
}

// submit evaluates the posted form. Runtime failures are recorded like
// successes; lex and syntax errors re-render the history with the diagnostic.
func (h *Handler) submit(c *fiber.Ctx) error {
	src := c.FormValue("expression")

	rejected := func(message string, e *types.Error) error {
		content := h.historyContent()
		content.Expression = src
		content.Error = e
		content.ErrorMessage = message
		return h.render(c, 400, "history.html", "history", content)
	}

	switch {
	case strings.TrimSpace(src) == "":
		return rejected("expression is required", nil)
	case strings.ContainsAny(src, "\n\x00"):
		return rejected("expression must be a single line", nil)
	case len(src) > h.maxLength:
		return rejected(fmt.Sprintf("expression exceeds maximum length of %d characters", h.maxLength), nil)
	}

	value, _, err := expr.EvalString(src)
	var ev *store.Evaluation
	if err != nil {
		e, ok := types.AsError(err)
		if !ok || e.Class() != types.TagRuntimeError {
			return rejected(err.Error(), e)
		}
		ev = h.store.RecordFailure("web", src, err)
	} else {
		ev = h.store.RecordSuccess("web", src, value)
	}
	return c.Redirect("/ui/evaluations/"+ev.Name, 303)
}

func (h *Handler) evaluationDetail(c *fiber.Ctx) error {
	id := c.Params("evaluation")
	ev, err := h.store.Get(id)
	if err != nil {
		return h.render(c, 404, "not_found.html", "", notFoundContent{
			Message: fmt.Sprintf("Evaluation '%s' not found", id),
		})
	}
	return h.render(c, 200, "evaluation_detail.html", "history", evaluationDetailContent{Evaluation: ev})
}

// --- Template Helpers ---

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func stateClass(state store.EvaluationState) string {
	switch state {
	case store.EvaluationSucceeded:
		return "state-succeeded"
	case store.EvaluationFailed:
		return "state-failed"
	default:
		return ""
	}
}

func stateIcon(state store.EvaluationState) template.HTML {
	switch state {
	case store.EvaluationSucceeded:
		return "&#10003;"
	case store.EvaluationFailed:
		return "&#10007;"
	default:
		return "&#8226;"
	}
}

// truncate shortens s to maxLen characters, never splitting a rune.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
