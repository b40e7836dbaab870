// Package official imports results from the official sources: the Flashscore
// fixture list scraped with a headless browser, and heat-level data from the
// federation API. Imported records feed validation of user protocols.
package official

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/Jakkmalm/speedway-protocol/internal/speedway"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// extractScript pulls every match row out of the rendered fixture list.
// Scores are empty strings until the match has been run.
const extractScript = `Array.from(document.querySelectorAll(".event__match")).map(el => {
	const text = sel => { const n = el.querySelector(sel); return n ? n.textContent.trim() : ""; };
	const link = el.querySelector("a.eventRowLink");
	return {
		home: text(".event__participant--home"),
		away: text(".event__participant--away"),
		time: text(".event__time"),
		home_score: text(".event__score--home"),
		away_score: text(".event__score--away"),
		url: link ? link.href : ""
	};
})`

type scrapedRow struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	Time      string `json:"time"`
	HomeScore string `json:"home_score"`
	AwayScore string `json:"away_score"`
	URL       string `json:"url"`
}

// Scraper fetches the Elitserien fixture list from Flashscore.
type Scraper struct {
	url      string
	timeout  time.Duration
	headless bool
	logger   *slog.Logger
}

// NewScraper creates a fixture scraper.
func NewScraper(url string, timeout time.Duration, headless bool, logger *slog.Logger) *Scraper {
	return &Scraper{url: url, timeout: timeout, headless: headless, logger: logger}
}

// FetchMatches renders the fixture page and returns every parseable match
// row. Rows without a recognizable date are skipped.
func (s *Scraper) FetchMatches(ctx context.Context) ([]speedway.OfficialMatch, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var rows []scrapedRow
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(s.url),
		// Consent banner, when present. Ignore failure, the page still loads.
		chromedp.ActionFunc(func(ctx context.Context) error {
			clickCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			chromedp.Run(clickCtx, chromedp.Click("#onetrust-accept-btn-handler", chromedp.ByID))
			return nil
		}),
		// Scroll to trigger lazy-loading of later rounds.
		chromedp.ActionFunc(func(ctx context.Context) error {
			for i := 0; i < 10; i++ {
				if err := chromedp.Run(ctx,
					chromedp.Evaluate(`window.scrollBy(0, 4000)`, nil),
					chromedp.Sleep(800*time.Millisecond),
				); err != nil {
					return err
				}
			}
			return nil
		}),
		chromedp.WaitVisible(".event__match", chromedp.ByQuery),
		chromedp.Evaluate(extractScript, &rows),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", s.url, err)
	}

	now := time.Now().UTC()
	var matches []speedway.OfficialMatch
	for _, row := range rows {
		if row.Home == "" || row.Away == "" {
			continue
		}
		date, ok := parseFlashscoreDate(row.Time, now.Year())
		if !ok {
			continue
		}
		om := speedway.OfficialMatch{
			ID:        uuid.NewString(),
			HomeTeam:  row.Home,
			AwayTeam:  row.Away,
			Date:      date,
			SourceURL: row.URL,
			ScrapedAt: now,
		}
		if h, err := parseScore(row.HomeScore); err == nil {
			if a, err := parseScore(row.AwayScore); err == nil {
				om.HomeScore = &h
				om.AwayScore = &a
			}
		}
		matches = append(matches, om)
	}

	s.logger.Info("flashscore scrape complete", "rows", len(rows), "matches", len(matches))
	return matches, nil
}

var dateRe = regexp.MustCompile(`\b(\d{2}\.\d{2}\.\s\d{2}:\d{2})\b`)

// parseFlashscoreDate extracts "DD.MM. HH:MM" from a row's time cell even
// when status text trails it, and attaches the given year.
func parseFlashscoreDate(raw string, year int) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(normalizeSpace(raw))
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse("02.01. 15:04", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(year, t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC), true
}

func normalizeSpace(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}

func parseScore(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
