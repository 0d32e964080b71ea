// Package view renders leaderboard snapshots as HTML pages, fragments and Markdown.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/carrollvalley/jdcvo-leaderboard/internal/leaderboard"
	"github.com/carrollvalley/jdcvo-leaderboard/internal/service"
)

//go:embed templates/*.html
var templates embed.FS

// TimeLayout is how "Last updated" stamps are shown.
const TimeLayout = "2006-01-02 15:04:05"

// Messages shown when the sheet cannot be read.
const (
	SourceUnavailableMessage = "Could not load leaderboard data"
	RoundsUnavailableMessage = "Could not load round data for this player"
)

// Config holds presentation settings.
type Config struct {
	Title           string
	RefreshInterval time.Duration
	StreamPath      string
	Location        *time.Location // defaults to time.Local
}

// Renderer executes the embedded templates. Safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
	cfg  Config
	now  func() time.Time
}

// New parses the templates.
func New(cfg Config) (*Renderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.RefreshInterval <= 0 {
		cfg.RefreshInterval = 30 * time.Second
	}
	return &Renderer{tmpl: tmpl, cfg: cfg, now: time.Now}, nil
}

type individualCard struct {
	Rank       int
	Player     string
	Team       string
	Total      string
	Href       string
	Badge      leaderboard.Badge
	BadgeTitle string
	Icon       string
	TeamColor  string
}

type teamCard struct {
	Rank    int
	Team    string
	Total   string
	Players string
	Color   string
}

type roundCard struct {
	Label  string
	Points string
}

type boardData struct {
	Individual []individualCard
	Teams      []teamCard
	Notices    []service.Notice
}

type pageData struct {
	Title              string
	GeneratedAt        string
	RefreshSeconds     int
	StreamPath         string
	Unavailable        bool
	UnavailableMessage string
	Board              boardData
}

type detailData struct {
	Title              string
	GeneratedAt        string
	RefreshSeconds     int
	Player             string
	BackHref           string
	Unavailable        bool
	UnavailableMessage string
	Rounds             []roundCard
}

// FormatPoints prints a score the way the sheet shows it: no trailing ".0".
func FormatPoints(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func badgeTitle(b leaderboard.Badge) string {
	switch b {
	case leaderboard.BadgeDefending:
		return "Defending champion"
	case leaderboard.BadgePastChampion:
		return "Past champion"
	default:
		return ""
	}
}

func toBoard(snap *service.Snapshot) boardData {
	board := boardData{
		Individual: make([]individualCard, len(snap.Individual)),
		Teams:      make([]teamCard, len(snap.Teams)),
		Notices:    snap.Notices,
	}
	for i, row := range snap.Individual {
		board.Individual[i] = individualCard{
			Rank:       row.Rank,
			Player:     row.Player,
			Team:       row.Team,
			Total:      FormatPoints(row.Total),
			Href:       PlayerHref(row.LinkKey),
			Badge:      row.Badge,
			BadgeTitle: badgeTitle(row.Badge),
			Icon:       row.Badge.Icon(),
			TeamColor:  row.TeamColor,
		}
	}
	for i, row := range snap.Teams {
		board.Teams[i] = teamCard{
			Rank:    row.Rank,
			Team:    row.Team,
			Total:   FormatPoints(row.Total),
			Players: row.Players,
			Color:   row.Color,
		}
	}
	return board
}

// Stamp formats t for display.
func (r *Renderer) Stamp(t time.Time) string {
	return t.In(r.cfg.Location).Format(TimeLayout)
}

// Page renders the main board. A nil snapshot renders the source-unavailable
// notice instead of any standings.
func (r *Renderer) Page(w io.Writer, snap *service.Snapshot) error {
	data := pageData{
		Title:          r.cfg.Title,
		RefreshSeconds: int(r.cfg.RefreshInterval / time.Second),
		StreamPath:     r.cfg.StreamPath,
	}
	if snap == nil {
		data.Unavailable = true
		data.UnavailableMessage = SourceUnavailableMessage
		data.GeneratedAt = r.Stamp(r.now())
	} else {
		data.Board = toBoard(snap)
		data.GeneratedAt = r.Stamp(snap.GeneratedAt)
	}
	return r.tmpl.ExecuteTemplate(w, "main", data)
}

// Board renders the standings fragment pushed to live viewers.
func (r *Renderer) Board(w io.Writer, snap *service.Snapshot) error {
	return r.tmpl.ExecuteTemplate(w, "board", toBoard(snap))
}

// Unavailable renders the fragment shown in place of the board when a cycle fails.
func (r *Renderer) Unavailable(w io.Writer) error {
	return r.tmpl.ExecuteTemplate(w, "unavailable", pageData{UnavailableMessage: SourceUnavailableMessage})
}

// Detail renders a player's card. A nil detail renders the unavailable notice.
func (r *Renderer) Detail(w io.Writer, route Route, detail *service.PlayerDetail) error {
	data := detailData{
		Title:          r.cfg.Title,
		RefreshSeconds: int(r.cfg.RefreshInterval / time.Second),
		Player:         route.Player,
		BackHref:       "/",
	}
	if detail == nil {
		data.Unavailable = true
		data.UnavailableMessage = RoundsUnavailableMessage
		data.GeneratedAt = r.Stamp(r.now())
	} else {
		data.GeneratedAt = r.Stamp(detail.GeneratedAt)
		data.Rounds = make([]roundCard, len(detail.Rounds))
		for i, round := range detail.Rounds {
			points := round.Text
			if round.Numeric() {
				points = FormatPoints(round.Points)
			}
			data.Rounds[i] = roundCard{Label: round.Label, Points: points}
		}
	}
	return r.tmpl.ExecuteTemplate(w, "detail", data)
}

// Markdown renders the board as Markdown, headed by the title and stamp.
func (r *Renderer) Markdown(snap *service.Snapshot) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<h1>%s</h1>", template.HTMLEscapeString(r.cfg.Title))
	if snap == nil {
		if err := r.Unavailable(&buf); err != nil {
			return "", err
		}
	} else if err := r.Board(&buf, snap); err != nil {
		return "", err
	}
	stamp := r.now()
	if snap != nil {
		stamp = snap.GeneratedAt
	}
	fmt.Fprintf(&buf, "<hr><p><em>Last updated: %s</em></p>", r.Stamp(stamp))

	markdown, err := htmltomarkdown.ConvertString(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert to markdown: %w", err)
	}
	return strings.TrimSpace(markdown) + "\n", nil
}
