package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CreateTestTemplate stores an assessment template.
func (c *Client) CreateTestTemplate(ctx context.Context, tmpl TestTemplate) (*CreateTestTemplateResponse, error) {
	if tmpl.Name == "" {
		return nil, missing("name")
	}
	tmpl.ID = 0

	var resp CreateTestTemplateResponse
	if err := c.post(ctx, "/api/v1/tests/templates", tmpl, &resp); err != nil {
		return nil, fmt.Errorf("create test template: %w", err)
	}
	return &resp, nil
}

// ListTestTemplates fetches active assessment templates.
func (c *Client) ListTestTemplates(ctx context.Context) ([]TestTemplate, error) {
	var resp TestTemplatesResponse
	if err := c.get(ctx, "/api/v1/tests/templates", nil, &resp); err != nil {
		return nil, fmt.Errorf("list test templates: %w", err)
	}
	return resp.Templates, nil
}

// ScheduleTest schedules one test per candidate.
func (c *Client) ScheduleTest(ctx context.Context, req ScheduleTestRequest) (*ScheduleTestResponse, error) {
	switch {
	case len(req.CandidateIDs) == 0:
		return nil, missing("candidate_ids")
	case req.TemplateID == 0:
		return nil, missing("template_id")
	case req.ScheduledDate == "":
		return nil, missing("scheduled_date")
	}
	if ParseTimestamp(req.ScheduledDate).IsZero() {
		return nil, fmt.Errorf("scheduled_date %q is not an ISO 8601 timestamp", req.ScheduledDate)
	}

	var resp ScheduleTestResponse
	if err := c.post(ctx, "/api/v1/tests/schedule", req, &resp); err != nil {
		return nil, fmt.Errorf("schedule test: %w", err)
	}
	return &resp, nil
}

// ListScheduledTests fetches scheduled tests. Zero candidateID and empty status mean no filter.
func (c *Client) ListScheduledTests(ctx context.Context, candidateID int, status string) ([]ScheduledTest, error) {
	query := url.Values{}
	if candidateID > 0 {
		query.Set("candidate_id", strconv.Itoa(candidateID))
	}
	if status != "" {
		query.Set("status", status)
	}

	var resp ScheduledTestsResponse
	if err := c.get(ctx, "/api/v1/tests/scheduled", query, &resp); err != nil {
		return nil, fmt.Errorf("list scheduled tests: %w", err)
	}
	return resp.Tests, nil
}
