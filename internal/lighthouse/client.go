package lighthouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/dt-pm-tools/lh2gh/internal/config"
	"github.com/dt-pm-tools/lh2gh/internal/markdown"
)

// Client is a read-only Lighthouse API client scoped to one project.
type Client struct {
	baseURL    string
	token      string
	project    string
	httpClient *http.Client

	// OnPage, when set, is called after each ticket listing page with the
	// number of ticket numbers the page contributed.
	OnPage func(page, found int)
}

// NewClient creates a new Lighthouse client from the given config.
func NewClient(cfg config.LighthouseConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.lighthouseapp.com", cfg.Account)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      cfg.Token,
		project:    cfg.Project,
		httpClient: &http.Client{},
	}
}

// TicketNumbers pages through the project's ticket listing until a page
// yields no ticket numbers and returns every number found, unordered.
func (c *Client) TicketNumbers(ctx context.Context) ([]int, error) {
	var numbers []int
	err := c.eachTicketSummary(ctx, func(s summaryEnvelope) {
		if s.Ticket.Number != nil {
			numbers = append(numbers, *s.Ticket.Number)
		}
	}, func(s summaryEnvelope) bool { return s.Ticket.Number != nil })
	if err != nil {
		return nil, err
	}
	return numbers, nil
}

// Assignees returns the distinct assigned user names across all tickets,
// sorted. It is used to author the assignee map before a migration.
func (c *Client) Assignees(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	err := c.eachTicketSummary(ctx, func(s summaryEnvelope) {
		if s.Ticket.AssignedUserName != nil && *s.Ticket.AssignedUserName != "" {
			seen[*s.Ticket.AssignedUserName] = true
		}
	}, func(s summaryEnvelope) bool { return s.Ticket.Number != nil })
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// eachTicketSummary walks listing pages, calling visit for every ticket
// summary. A page ends pagination when counts reports no entries for it or
// when its "tickets" field is absent or not an array.
func (c *Client) eachTicketSummary(ctx context.Context, visit func(summaryEnvelope), counts func(summaryEnvelope) bool) error {
	for page := 1; ; page++ {
		path := fmt.Sprintf("/projects/%s/tickets.json", url.PathEscape(c.project))
		body, status, err := c.get(ctx, path, url.Values{"page": {strconv.Itoa(page)}})
		if err != nil {
			return fmt.Errorf("fetching ticket page %d: %w", page, err)
		}

		summaries := decodePage(body)
		found := 0
		for _, s := range summaries {
			if s.Ticket == nil {
				continue
			}
			if counts(s) {
				found++
			}
			visit(s)
		}

		if c.OnPage != nil {
			c.OnPage(page, found)
		}
		if found == 0 {
			slog.Debug("ticket listing exhausted", "page", page, "status", status)
			return nil
		}
	}
}

func decodePage(body []byte) []summaryEnvelope {
	var page ticketPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil
	}
	var summaries []summaryEnvelope
	if err := json.Unmarshal(page.Tickets, &summaries); err != nil {
		return nil
	}
	return summaries
}

// Ticket fetches a single ticket with its versions and attachments. A
// response without a "ticket" field yields a nil ticket and no error; a
// response that is not valid ticket JSON is an error.
func (c *Client) Ticket(ctx context.Context, number int) (*Ticket, error) {
	path := fmt.Sprintf("/projects/%s/tickets/%d.json", url.PathEscape(c.project), number)
	body, status, err := c.get(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching ticket %d: %w", number, err)
	}

	var env ticketEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("decoding ticket %d (status %d): %w: %s", number, status, err, markdown.Snippet(body))
	}
	return env.Ticket, nil
}

// Milestones fetches the project's milestones in a single request.
func (c *Client) Milestones(ctx context.Context) ([]Milestone, error) {
	path := fmt.Sprintf("/projects/%s/milestones.json", url.PathEscape(c.project))
	body, status, err := c.get(ctx, path, url.Values{"limit": {"1"}, "page": {"1"}})
	if err != nil {
		return nil, fmt.Errorf("fetching milestones: %w", err)
	}

	var result milestonesResponse
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Warn("undecodable milestones response", "status", status, "error", err)
		return nil, nil
	}

	milestones := make([]Milestone, 0, len(result.Milestones))
	for _, m := range result.Milestones {
		if m.Milestone != nil {
			milestones = append(milestones, *m.Milestone)
		}
	}
	return milestones, nil
}

// Attachment downloads the raw contents of an attachment URL. The token is
// not sent because attachment URLs may redirect to third-party storage.
func (c *Client) Attachment(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("attachment download returned %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading attachment: %w", err)
	}
	return data, nil
}

// get performs an authenticated GET and returns the raw body regardless of
// status; only transport failures are errors.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("reading response: %w", err)
	}

	slog.Debug("lighthouse request", "url", u, "status", resp.StatusCode, "bytes", len(body))
	if resp.StatusCode != http.StatusOK {
		slog.Warn("Lighthouse API returned non-200", "url", u, "status", resp.StatusCode, "body", markdown.Snippet(body))
	}

	return body, resp.StatusCode, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("X-LighthouseToken", c.token)
	// Lighthouse has always been sent this header; the .json endpoints
	// answer with JSON regardless.
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/json")
}
