// Package contact finds a government department's phone number and email by
// searching the web and asking an LLM to pick the answer out of the results.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"civicvoice/backend/internal/config"
	"civicvoice/backend/internal/llm"
	"civicvoice/backend/internal/metrics"
	"civicvoice/backend/internal/prompts"
	"civicvoice/backend/internal/search"

	"golang.org/x/sync/errgroup"
)

// Searcher is a ranked web search.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (*search.Response, error)
}

// Contact is the lookup result. Missing fields hold "Not found"; that is a
// normal outcome, not an error.
type Contact struct {
	Department    string  `json:"department"`
	Location      string  `json:"location"`
	ContactNumber string  `json:"contactNumber"`
	Email         string  `json:"email"`
	SourceURL     string  `json:"sourceUrl"`
	Confidence    float64 `json:"confidence"`
	IsRegional    bool    `json:"isRegional"`
	Note          string  `json:"note,omitempty"`
}

type extraction struct {
	ContactNumber string  `json:"contactNumber"`
	Email         string  `json:"email"`
	SourceURL     string  `json:"sourceUrl"`
	Confidence    float64 `json:"confidence"`
	IsRegional    bool    `json:"isRegional"`
}

type Agent struct {
	Search  Searcher
	LLM     llm.LLMClient
	Prompts *prompts.Catalogue
	Metrics *metrics.Collector
}

func NewAgent(s Searcher, client llm.LLMClient, p *prompts.Catalogue, m *metrics.Collector) *Agent {
	return &Agent{Search: s, LLM: client, Prompts: p, Metrics: m}
}

// FindDepartmentContact searches for the department's phone and email in
// parallel, then extracts the best contact from the merged results. Search
// and LLM transport errors are returned; everything else degrades to a
// lower-confidence or "Not found" answer.
func (a *Agent) FindDepartmentContact(ctx context.Context, department, location string) (*Contact, error) {
	department = strings.TrimSpace(department)
	location = strings.TrimSpace(location)
	base := strings.TrimSpace(department + " " + searchHint(department) + " " + location)

	var phoneResp, emailResp *search.Response
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		phoneResp, err = a.Search.Search(gctx, base+" official contact phone number helpline", config.ContactResultsPerQuery)
		return err
	})
	g.Go(func() error {
		var err error
		emailResp, err = a.Search.Search(gctx, base+" official email address", config.ContactResultsPerQuery)
		return err
	})
	if err := g.Wait(); err != nil {
		a.Metrics.RecordContactLookup(metrics.OutcomeError)
		return nil, fmt.Errorf("contact search: %w", err)
	}

	answers, results := merge(phoneResp, emailResp)

	out := &Contact{
		Department:    department,
		Location:      location,
		ContactNumber: config.ContactNotFound,
		Email:         config.ContactNotFound,
	}

	if len(results) == 0 {
		out.Note = "No search results found for this department and location."
		a.Metrics.RecordContactLookup(metrics.OutcomeNotFound)
		return out, nil
	}

	fullText := rawText(answers, results)
	prompt := prompts.Render(a.Prompts.Contact.Extract, map[string]string{
		"department": department,
		"location":   location,
		"context":    truncate(buildContext(answers, results), config.ContactContextMax),
	})

	resp, err := a.LLM.Generate(ctx, prompt)
	if err != nil {
		a.Metrics.RecordContactLookup(metrics.OutcomeError)
		return nil, fmt.Errorf("contact extraction: %w", err)
	}

	ext, ok := parseExtraction(resp)
	if !ok {
		slog.Warn("contact extraction unparseable, falling back to pattern matching", "department", department)
		fallback(out, results, fullText)
		a.Metrics.RecordContactLookup(metrics.OutcomeFallback)
		return out, nil
	}

	out.ContactNumber = ext.ContactNumber
	out.Email = ext.Email
	out.SourceURL = ext.SourceURL
	out.Confidence = clampConfidence(ext.Confidence)
	out.IsRegional = ext.IsRegional
	rescue(out, fullText)

	if out.ContactNumber == config.ContactNotFound && out.Email == config.ContactNotFound {
		a.Metrics.RecordContactLookup(metrics.OutcomeNotFound)
	} else {
		a.Metrics.RecordContactLookup(metrics.OutcomeFound)
	}
	return out, nil
}

func searchHint(department string) string {
	d := strings.ToLower(department)
	for _, h := range config.DepartmentSearchHints {
		for _, kw := range h.Keywords {
			if strings.Contains(d, kw) {
				return h.Suffix
			}
		}
	}
	return ""
}

// merge dedupes by URL keeping first sight, truncates each result's content
// and caps the total.
func merge(responses ...*search.Response) ([]string, []search.Result) {
	var answers []string
	var results []search.Result
	seen := make(map[string]bool)

	for _, r := range responses {
		if r == nil {
			continue
		}
		if a := strings.TrimSpace(r.Answer); a != "" {
			answers = append(answers, a)
		}
		for _, res := range r.Results {
			if seen[res.URL] {
				continue
			}
			seen[res.URL] = true
			res.Content = truncate(res.Content, config.ContactResultContentMax)
			results = append(results, res)
		}
	}

	if len(results) > config.ContactMaxResults {
		results = results[:config.ContactMaxResults]
	}
	return answers, results
}

func buildContext(answers []string, results []search.Result) string {
	var sb strings.Builder
	for _, a := range answers {
		fmt.Fprintf(&sb, "Summary: %s\n\n", a)
	}
	for i, r := range results {
		fmt.Fprintf(&sb, "[%d] %s\nURL: %s\n%s\n\n", i+1, r.Title, r.URL, r.Content)
	}
	return sb.String()
}

func rawText(answers []string, results []search.Result) string {
	parts := append([]string{}, answers...)
	for _, r := range results {
		parts = append(parts, r.Title, r.Content)
	}
	return strings.Join(parts, "\n")
}

// parseExtraction tries a strict decode, then a lenient one.
func parseExtraction(resp string) (extraction, bool) {
	ext, err := llm.DecodeStrict[extraction](resp)
	if err == nil {
		return ext, true
	}
	slog.Debug("contact extraction not strict JSON", "error", err)

	ext, err = llm.DecodeLenient[extraction](resp)
	if err == nil {
		slog.Warn("contact extraction recovered by lenient parse")
		return ext, true
	}
	return extraction{}, false
}

// fallback fills out from patterns over the raw search content.
func fallback(out *Contact, results []search.Result, fullText string) {
	phone := FindPhone(fullText)
	email := FindEmail(fullText)
	if phone != "" {
		out.ContactNumber = phone
	}
	if email != "" {
		out.Email = email
	}
	out.SourceURL = sourceFor(results, phone, email)
	if phone != "" || email != "" {
		out.Confidence = config.ContactFallbackConfidence
	}
	out.Note = "Extracted by pattern matching from search results; verify before use."
}

// rescue replaces placeholder values with pattern matches from the results
// and bumps confidence when anything was recovered.
func rescue(out *Contact, fullText string) {
	rescued := false

	if IsNotFound(out.ContactNumber) {
		out.ContactNumber = config.ContactNotFound
		if phone := FindPhone(fullText); phone != "" {
			out.ContactNumber = phone
			rescued = true
		}
	}
	if IsNotFound(out.Email) {
		out.Email = config.ContactNotFound
		if email := FindEmail(fullText); email != "" {
			out.Email = email
			rescued = true
		}
	}

	if rescued {
		slog.Info("contact fields rescued by pattern matching", "department", out.Department)
		out.Confidence = max(out.Confidence, min(out.Confidence+config.ContactRescueBonus, config.ContactRescueCap))
	}
}

func sourceFor(results []search.Result, needles ...string) string {
	for _, n := range needles {
		if n == "" {
			continue
		}
		for _, r := range results {
			if strings.Contains(r.Content, n) || strings.Contains(r.Title, n) {
				return r.URL
			}
		}
	}
	if len(results) > 0 {
		return results[0].URL
	}
	return ""
}

// clampConfidence accepts 0..1 or a 0..100 percentage.
func clampConfidence(c float64) float64 {
	if c > 1 && c <= 100 {
		c /= 100
	}
	return min(max(c, 0), 1)
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
