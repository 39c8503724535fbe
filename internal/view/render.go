package view

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/meronoumer/moodreads/internal/domain"
	"github.com/meronoumer/moodreads/internal/form"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	pageTemplate = template.Must(template.New("moodreads").ParseFS(templateFS, "templates/*.html"))

	// backend descriptions may carry light markup
	descriptionPolicy = bluemonday.NewPolicy().AllowElements("b", "i", "em", "strong", "p", "br")
)

type card struct {
	Key          string
	Title        string
	Author       string
	Badge        string
	Genres       []string
	Description  template.HTML
	CoverURL     string
	HasScore     bool
	ScorePercent int
}

type notice struct {
	Kind    string
	Title   string
	Message string
}

type pageData struct {
	Accent       string
	Refresh      bool
	Phase        string
	Form         form.Snapshot
	Presets      []form.Preset
	ResultCounts []int
	Notice       *notice
	Placeholders []int
	Cards        []card
	Examples     []string
}

// Render writes the full page for the current state.
func (v *View) Render(w io.Writer) error {
	return pageTemplate.ExecuteTemplate(w, "page", v.pageData())
}

func (v *View) pageData() pageData {
	snap := v.form.Snapshot()

	v.mu.Lock()
	state := v.state.clone()
	accent := v.accent
	examples := v.examples
	v.mu.Unlock()

	data := pageData{
		Accent:       accent,
		Phase:        state.Phase.String(),
		Form:         snap,
		Presets:      form.Presets,
		ResultCounts: form.ResultCounts,
	}

	switch state.Phase {
	case PhaseLoading:
		data.Refresh = true
		data.Form.Disabled = true
		data.Placeholders = make([]int, state.Requested)
		for i := range data.Placeholders {
			data.Placeholders[i] = i
		}
	case PhaseError:
		data.Notice = noticeFor(state)
	case PhaseSuccess:
		data.Cards = make([]card, 0, len(state.Results))
		for i, b := range state.Results {
			data.Cards = append(data.Cards, cardFor(i, b))
		}
	default:
		data.Examples = examples
	}
	return data
}

func noticeFor(s State) *notice {
	if s.Kind == KindNoResults {
		return &notice{Kind: "no-results", Title: NoResultsTitle, Message: s.Message}
	}
	return &notice{Kind: "failure", Title: FailureTitle, Message: s.Message}
}

func cardFor(idx int, b domain.Book) card {
	c := card{
		Key:      b.ID,
		Title:    b.Title,
		Author:   strings.TrimSpace(b.Author),
		Badge:    b.PrimaryGenre(),
		Genres:   b.Genres,
		CoverURL: strings.TrimSpace(b.CoverURL),
	}
	if c.Key == "" {
		c.Key = strconv.Itoa(idx)
	}
	if d := strings.TrimSpace(b.Description); d != "" {
		c.Description = template.HTML(descriptionPolicy.Sanitize(d))
	}
	c.ScorePercent, c.HasScore = b.ScorePercent()
	return c
}

//go:embed static
var staticFS embed.FS

// Static serves the page's stylesheet under /static/.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
