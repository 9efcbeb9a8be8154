package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/navikenz/navihire/internal/api"
)

// bulkOptions collects send-bulk flags before they become a request.
type bulkOptions struct {
	req    api.SendBulkEmailRequest
	to     []string
	filter string
}

// client loads configuration and returns a REST client for a command.
func (o *rootOptions) client(cmd *cobra.Command) (*api.Client, error) {
	cfg, logger, err := o.load(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	return newAPIClient(cfg, logger), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func runHealth(cmd *cobra.Command, root *rootOptions) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	health, err := client.Health(cmd.Context())
	if err != nil {
		return err
	}
	if err := printJSON(cmd.OutOrStdout(), health); err != nil {
		return err
	}
	if !health.Healthy() {
		return fmt.Errorf("backend reports status %q", health.Status)
	}
	return nil
}

func runFlightsSearch(cmd *cobra.Command, root *rootOptions, req api.FlightSearchRequest) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.SearchFlights(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runEmailTemplatesList(cmd *cobra.Command, root *rootOptions, category string) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	templates, err := client.ListEmailTemplates(cmd.Context(), category)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), templates)
}

func runEmailTemplatesCreate(cmd *cobra.Command, root *rootOptions, req api.CreateEmailTemplateRequest, bodyFile string) error {
	if bodyFile != "" {
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return fmt.Errorf("read body file: %w", err)
		}
		req.BodyHTML = string(data)
	}
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.CreateEmailTemplate(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runEmailSignaturesList(cmd *cobra.Command, root *rootOptions) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	sigs, err := client.ListEmailSignatures(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), sigs)
}

func runEmailSignaturesCreate(cmd *cobra.Command, root *rootOptions, sig api.EmailSignature) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.CreateEmailSignature(cmd.Context(), sig)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runEmailAddonsList(cmd *cobra.Command, root *rootOptions) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	addons, err := client.ListEmailAddons(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), addons)
}

func runEmailAddonsCreate(cmd *cobra.Command, root *rootOptions, addon api.EmailAddon) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.CreateEmailAddon(cmd.Context(), addon)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runEmailSend(cmd *cobra.Command, root *rootOptions, req api.SendEmailRequest) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.SendEmail(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

// bulkRequest turns send-bulk flags into a request.
func bulkRequest(opts bulkOptions) (api.SendBulkEmailRequest, error) {
	req := opts.req
	switch req.RecipientType {
	case api.RecipientFiltered:
		if opts.filter == "" {
			return req, errors.New("--filter is required for filtered recipients")
		}
		var criteria map[string]any
		if err := json.Unmarshal([]byte(opts.filter), &criteria); err != nil {
			return req, fmt.Errorf("parse --filter: %w", err)
		}
		req.RecipientData = criteria
	case api.RecipientIndividual:
		if len(opts.to) != 1 {
			return req, errors.New("individual recipients take exactly one --to address")
		}
		req.RecipientData = strings.TrimSpace(opts.to[0])
	default:
		if len(opts.to) == 0 {
			return req, errors.New("--to is required")
		}
		recipients := make([]api.BulkRecipient, 0, len(opts.to))
		for _, addr := range opts.to {
			if addr = strings.TrimSpace(addr); addr != "" {
				recipients = append(recipients, api.BulkRecipient{Email: addr})
			}
		}
		req.RecipientData = recipients
	}
	if req.ScheduledAt != "" {
		immediate := false
		req.SendImmediately = &immediate
	}
	return req, nil
}

func runEmailSendBulk(cmd *cobra.Command, root *rootOptions, opts bulkOptions) error {
	req, err := bulkRequest(opts)
	if err != nil {
		return err
	}
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.SendBulkEmail(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runEmailTest(cmd *cobra.Command, root *rootOptions, email string) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.SendTestEmail(cmd.Context(), email)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runTestTemplatesList(cmd *cobra.Command, root *rootOptions) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	templates, err := client.ListTestTemplates(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), templates)
}

func runTestTemplatesCreate(cmd *cobra.Command, root *rootOptions, tmpl api.TestTemplate) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.CreateTestTemplate(cmd.Context(), tmpl)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runTestSchedule(cmd *cobra.Command, root *rootOptions, req api.ScheduleTestRequest) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.ScheduleTest(cmd.Context(), req)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}

func runTestScheduled(cmd *cobra.Command, root *rootOptions, candidateID int, status string) error {
	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	tests, err := client.ListScheduledTests(cmd.Context(), candidateID, status)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), tests)
}

func runResumesUpload(cmd *cobra.Command, root *rootOptions, paths []string, jobID string) error {
	var files []api.ResumeFile
	for _, p := range paths {
		if !api.IsResumeFile(p) {
			return fmt.Errorf("%s: unsupported resume type (want .pdf, .doc, .docx or .txt)", p)
		}
		f, err := os.Open(p)
		if err != nil {
			return fmt.Errorf("open resume: %w", err)
		}
		defer f.Close()
		files = append(files, api.ResumeFile{Name: filepath.Base(p), Content: f})
	}

	client, err := root.client(cmd)
	if err != nil {
		return err
	}
	resp, err := client.UploadResumes(cmd.Context(), files, jobID)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), resp)
}
