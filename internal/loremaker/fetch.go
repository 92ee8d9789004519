package loremaker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"loremaker/pkg/logger"
	"loremaker/pkg/models"
	"loremaker/pkg/utils"
)

// Format is a wire format the spreadsheet can be exported in.
type Format string

const (
	FormatGviz Format = "gviz"
	FormatCSV  Format = "csv"

	maxBodyBytes = 8 << 20
)

var ErrNoCharacters = errors.New("no characters found")

// Fetcher loads the character sheet. Every (format, sheet) pair is tried in
// order until one yields characters; if none does, the sample dataset is used.
type Fetcher struct {
	Client  *http.Client
	BaseURL string
	SheetID string
	Sheets  []string
	Now     func() time.Time
	Logger  *logger.Logger
}

func NewFetcher(cfg utils.Config, log *logger.Logger) *Fetcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: cfg.FetchTimeout},
		BaseURL: strings.TrimRight(cfg.SheetsBase, "/"),
		SheetID: cfg.SheetID,
		Sheets:  SheetNames(cfg.SheetName),
		Now:     time.Now,
		Logger:  log.With("component", "fetcher"),
	}
}

// SheetNames returns the sheet names to try: the configured one followed by
// the generic defaults, without blanks or case-insensitive duplicates.
func SheetNames(primary string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range []string{primary, "Characters", "Sheet1"} {
		name = strings.TrimSpace(name)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// URL is the export endpoint for one sheet in one format.
func (f *Fetcher) URL(format Format, sheet string) string {
	out := "json"
	if format == FormatCSV {
		out = "csv"
	}
	q := url.Values{}
	q.Set("tqx", "out:"+out)
	q.Set("sheet", sheet)
	return fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?%s", f.BaseURL, url.PathEscape(f.SheetID), q.Encode())
}

// Load runs the fallback chain. The returned error is non-nil only when ctx
// is done; every other failure is recorded in Batch.Error and the next
// attempt runs.
func (f *Fetcher) Load(ctx context.Context) (*Batch, error) {
	now := f.now()
	var failures []string

	for _, format := range []Format{FormatGviz, FormatCSV} {
		for _, sheet := range f.sheets() {
			chars, err := f.fetchSheet(ctx, format, sheet, now)
			if err == nil {
				f.log().Info("characters loaded", "format", format, "sheet", sheet, "count", len(chars))
				return &Batch{
					Characters: chars,
					Error:      strings.Join(failures, "; "),
					Source:     fmt.Sprintf("%s:%s", format, sheet),
					LoadedAt:   now,
				}, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			f.log().Warn("sheet attempt failed", "format", format, "sheet", sheet, "error", err)
			failures = append(failures, fmt.Sprintf("%s %q: %v", format, sheet, err))
		}
	}

	f.log().Error("all sheet attempts failed, serving sample data", "attempts", len(failures))
	return &Batch{
		Characters: SampleCharacters(now),
		Error:      strings.Join(failures, "; "),
		Source:     SourceSample,
		LoadedAt:   now,
	}, nil
}

func (f *Fetcher) fetchSheet(ctx context.Context, format Format, sheet string, now time.Time) ([]models.Character, error) {
	body, err := f.get(ctx, f.URL(format, sheet))
	if err != nil {
		return nil, err
	}
	if looksLikeHTML(body) {
		return nil, errors.New("unexpected html response")
	}

	var rows [][]string
	switch format {
	case FormatCSV:
		rows = ParseCSV(string(body))
	default:
		rows, err = ParseGviz(body)
		if err != nil {
			return nil, err
		}
	}
	if len(DropBlankRows(rows)) == 0 {
		return nil, errors.New("no rows")
	}

	chars := BuildCharacters(rows, now)
	if len(chars) == 0 {
		return nil, ErrNoCharacters
	}
	return chars, nil
}

func (f *Fetcher) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return body, nil
}

// Sheets that are private or missing answer 200 with a sign-in page.
func looksLikeHTML(body []byte) bool {
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.HasPrefix(head, "<html")
}

func (f *Fetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

func (f *Fetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Fetcher) log() *logger.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return logger.Nop()
}

func (f *Fetcher) sheets() []string {
	if len(f.Sheets) > 0 {
		return f.Sheets
	}
	return SheetNames("")
}
