package api

import (
	"context"
	"fmt"
	"net/url"
)

// CreateEmailTemplate stores a new email template.
func (c *Client) CreateEmailTemplate(ctx context.Context, req CreateEmailTemplateRequest) (*CreateEmailTemplateResponse, error) {
	switch {
	case req.Name == "":
		return nil, missing("name")
	case req.Subject == "":
		return nil, missing("subject")
	case req.BodyHTML == "":
		return nil, missing("body_html")
	}

	var resp CreateEmailTemplateResponse
	if err := c.post(ctx, "/api/v1/emails/templates", req, &resp); err != nil {
		return nil, fmt.Errorf("create email template: %w", err)
	}
	return &resp, nil
}

// ListEmailTemplates fetches email templates, optionally filtered by category.
func (c *Client) ListEmailTemplates(ctx context.Context, category string) ([]EmailTemplate, error) {
	query := url.Values{}
	if category != "" {
		query.Set("category", category)
	}

	var resp EmailTemplatesResponse
	if err := c.get(ctx, "/api/v1/emails/templates", query, &resp); err != nil {
		return nil, fmt.Errorf("list email templates: %w", err)
	}
	return resp.Templates, nil
}

// CreateEmailSignature stores a signature. A default signature replaces the previous default.
func (c *Client) CreateEmailSignature(ctx context.Context, sig EmailSignature) (*CreateSignatureResponse, error) {
	switch {
	case sig.Name == "":
		return nil, missing("name")
	case sig.HTMLContent == "":
		return nil, missing("html_content")
	}
	sig.ID = 0

	var resp CreateSignatureResponse
	if err := c.post(ctx, "/api/v1/emails/signatures", sig, &resp); err != nil {
		return nil, fmt.Errorf("create email signature: %w", err)
	}
	return &resp, nil
}

// ListEmailSignatures fetches active signatures.
func (c *Client) ListEmailSignatures(ctx context.Context) ([]EmailSignature, error) {
	var resp EmailSignaturesResponse
	if err := c.get(ctx, "/api/v1/emails/signatures", nil, &resp); err != nil {
		return nil, fmt.Errorf("list email signatures: %w", err)
	}
	return resp.Signatures, nil
}

// CreateEmailAddon stores an add-on block.
func (c *Client) CreateEmailAddon(ctx context.Context, addon EmailAddon) (*CreateAddonResponse, error) {
	switch {
	case addon.Name == "":
		return nil, missing("name")
	case addon.Type == "":
		return nil, missing("type")
	case addon.Content == "":
		return nil, missing("content")
	}
	addon.ID = 0

	var resp CreateAddonResponse
	if err := c.post(ctx, "/api/v1/emails/addons", addon, &resp); err != nil {
		return nil, fmt.Errorf("create email addon: %w", err)
	}
	return &resp, nil
}

// ListEmailAddons fetches active add-ons.
func (c *Client) ListEmailAddons(ctx context.Context) ([]EmailAddon, error) {
	var resp EmailAddonsResponse
	if err := c.get(ctx, "/api/v1/emails/addons", nil, &resp); err != nil {
		return nil, fmt.Errorf("list email addons: %w", err)
	}
	return resp.Addons, nil
}

// SendEmail renders a template for one recipient and sends it.
func (c *Client) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	switch {
	case req.TemplateID == 0:
		return nil, missing("template_id")
	case req.RecipientEmail == "":
		return nil, missing("recipient_email")
	}

	var resp SendEmailResponse
	if err := c.post(ctx, "/api/v1/emails/send", req, &resp); err != nil {
		return nil, fmt.Errorf("send email: %w", err)
	}
	return &resp, nil
}

// SendBulkEmail starts a campaign.
func (c *Client) SendBulkEmail(ctx context.Context, req SendBulkEmailRequest) (*SendBulkEmailResponse, error) {
	if req.TemplateID == 0 {
		return nil, missing("template_id")
	}
	if req.RecipientData == nil {
		return nil, missing("recipient_data")
	}
	switch req.RecipientType {
	case "":
		req.RecipientType = RecipientBulk
	case RecipientIndividual, RecipientBulk, RecipientFiltered:
	default:
		return nil, fmt.Errorf("unknown recipient type %q", req.RecipientType)
	}

	var resp SendBulkEmailResponse
	if err := c.post(ctx, "/api/v1/emails/send-bulk", req, &resp); err != nil {
		return nil, fmt.Errorf("send bulk email: %w", err)
	}
	return &resp, nil
}

// SendTestEmail asks the backend to verify its mail configuration.
func (c *Client) SendTestEmail(ctx context.Context, email string) (*TestEmailResponse, error) {
	if email == "" {
		return nil, missing("email")
	}

	var resp TestEmailResponse
	if err := c.post(ctx, "/api/v1/emails/test", map[string]string{"email": email}, &resp); err != nil {
		return nil, fmt.Errorf("send test email: %w", err)
	}
	return &resp, nil
}
