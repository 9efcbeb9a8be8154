package main

// commands.go contains the cobra command definitions and their flags.
// Each builder wires a command to its handler.

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/navikenz/navihire/internal/api"
	"github.com/navikenz/navihire/internal/version"
)

// =============================================================================
// Chat Command
// =============================================================================

func buildChatCmd(root *rootOptions) *cobra.Command {
	var opts chatOptions

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open a realtime chat session",
		Long: `Open a realtime chat session with the NaviHire assistant.

Lines typed on stdin are sent as messages. Commands:
  /reconnect  drop the connection and open a fresh one
  /status     print connection status
  /quit       end the session

The session reconnects on its own after abnormal closes, refreshes an idle
connection, and follows network reachability. Send SIGUSR1 to force a
reconnect; resuming a stopped process (SIGCONT) checks the connection.`,
		Example: `  # Start with an explicit identity
  navihire chat --identity user_123

  # Archive the conversation and expose metrics
  navihire chat --config /etc/navihire/navihire.yaml --metrics-port 9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.identity, "identity", "i", "",
		"Session identity (default: NAVIHIRE_IDENTITY, session.identity, or a generated user_<uuid>)")
	cmd.Flags().IntVar(&opts.metricsPort, "metrics-port", -1,
		"Serve /health and /metrics on this port (0 disables, default from config)")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false,
		"Disable colored status output")

	return cmd
}

// =============================================================================
// Health Command
// =============================================================================

func buildHealthCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check backend health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHealth(cmd, root)
		},
	}
}

// =============================================================================
// Flight Commands
// =============================================================================

func buildFlightsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flights",
		Short: "Search flights for candidate travel",
	}
	cmd.AddCommand(buildFlightsSearchCmd(root))
	return cmd
}

func buildFlightsSearchCmd(root *rootOptions) *cobra.Command {
	var req api.FlightSearchRequest
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search flight offers",
		Example: `  navihire flights search --origin DEL --destination BOM --date 2025-03-01 --passengers 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlightsSearch(cmd, root, req)
		},
	}
	cmd.Flags().StringVar(&req.Origin, "origin", "", "Origin airport code")
	cmd.Flags().StringVar(&req.Destination, "destination", "", "Destination airport code")
	cmd.Flags().StringVar(&req.Date, "date", "", "Departure date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&req.Passengers, "passengers", 1, "Number of passengers")
	cmd.Flags().StringVar(&req.FlightType, "type", "", "Flight type (e.g. one_way)")
	cmd.MarkFlagRequired("origin")
	cmd.MarkFlagRequired("destination")
	cmd.MarkFlagRequired("date")
	return cmd
}

// =============================================================================
// Email Commands
// =============================================================================

func buildEmailsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "emails",
		Short: "Manage email templates and send candidate emails",
	}
	cmd.AddCommand(
		buildEmailTemplatesCmd(root),
		buildEmailSignaturesCmd(root),
		buildEmailAddonsCmd(root),
		buildEmailSendCmd(root),
		buildEmailSendBulkCmd(root),
		buildEmailTestCmd(root),
	)
	return cmd
}

func buildEmailTemplatesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List or create email templates",
	}

	var category string
	list := &cobra.Command{
		Use:   "list",
		Short: "List email templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailTemplatesList(cmd, root, category)
		},
	}
	list.Flags().StringVar(&category, "category", "", "Only templates in this category")

	var (
		req      api.CreateEmailTemplateRequest
		bodyFile string
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an email template",
		Long: `Create an email template. Placeholders such as {{candidate_name}} in the
subject or body are detected by the backend and reported back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailTemplatesCreate(cmd, root, req, bodyFile)
		},
	}
	create.Flags().StringVar(&req.Name, "name", "", "Template name")
	create.Flags().StringVar(&req.Category, "category", "", "Template category")
	create.Flags().StringVar(&req.Subject, "subject", "", "Subject line")
	create.Flags().StringVar(&req.BodyHTML, "body", "", "HTML body")
	create.Flags().StringVar(&bodyFile, "body-file", "", "Read the HTML body from a file")
	create.Flags().IntVar(&req.CreatedBy, "created-by", 0, "Creator user id")
	create.MarkFlagsMutuallyExclusive("body", "body-file")

	cmd.AddCommand(list, create)
	return cmd
}

func buildEmailSignaturesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signatures",
		Short: "List or create email signatures",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List email signatures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailSignaturesList(cmd, root)
		},
	}

	var sig api.EmailSignature
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an email signature",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailSignaturesCreate(cmd, root, sig)
		},
	}
	create.Flags().StringVar(&sig.Name, "name", "", "Signature name")
	create.Flags().StringVar(&sig.HTMLContent, "html", "", "Signature HTML")
	create.Flags().StringVar(&sig.CompanyName, "company", "", "Company name")
	create.Flags().StringVar(&sig.CompanyLogoURL, "logo-url", "", "Company logo URL")
	create.Flags().BoolVar(&sig.IsDefault, "default", false, "Make this the default signature")

	cmd.AddCommand(list, create)
	return cmd
}

func buildEmailAddonsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "addons",
		Short: "List or create email add-ons",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List email add-ons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailAddonsList(cmd, root)
		},
	}

	var addon api.EmailAddon
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an email add-on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailAddonsCreate(cmd, root, addon)
		},
	}
	create.Flags().StringVar(&addon.Name, "name", "", "Add-on name")
	create.Flags().StringVar(&addon.Type, "type", "", "Add-on type (footer, disclaimer, social_links)")
	create.Flags().StringVar(&addon.Content, "content", "", "Add-on content")
	create.Flags().BoolVar(&addon.AutoInclude, "auto-include", false, "Attach to every email")

	cmd.AddCommand(list, create)
	return cmd
}

func buildEmailSendCmd(root *rootOptions) *cobra.Command {
	var req api.SendEmailRequest
	cmd := &cobra.Command{
		Use:     "send",
		Short:   "Send a templated email to one recipient",
		Example: `  navihire emails send --template 3 --to jane@example.com --var candidate_name=Jane`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailSend(cmd, root, req)
		},
	}
	cmd.Flags().IntVar(&req.TemplateID, "template", 0, "Template id")
	cmd.Flags().StringVar(&req.RecipientEmail, "to", "", "Recipient address")
	cmd.Flags().StringToStringVar(&req.Variables, "var", nil, "Template variable as key=value (repeatable)")
	return cmd
}

func buildEmailSendBulkCmd(root *rootOptions) *cobra.Command {
	var opts bulkOptions
	cmd := &cobra.Command{
		Use:   "send-bulk",
		Short: "Send a templated email campaign",
		Long: `Send a templated email campaign.

Recipient types:
  bulk        --to is a list of addresses (default)
  individual  --to is a single address
  filtered    --filter is a JSON object of candidate filter criteria`,
		Example: `  navihire emails send-bulk --template 3 --to a@example.com,b@example.com --name "March drive"
  navihire emails send-bulk --template 3 --type filtered --filter '{"status":"shortlisted"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailSendBulk(cmd, root, opts)
		},
	}
	cmd.Flags().IntVar(&opts.req.TemplateID, "template", 0, "Template id")
	cmd.Flags().StringVar(&opts.req.RecipientType, "type", api.RecipientBulk, "Recipient type (individual, bulk, filtered)")
	cmd.Flags().StringSliceVar(&opts.to, "to", nil, "Recipient addresses")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Candidate filter as JSON (filtered type only)")
	cmd.Flags().StringVar(&opts.req.Name, "name", "", "Campaign name")
	cmd.Flags().StringVar(&opts.req.SenderName, "sender-name", "", "Sender display name")
	cmd.Flags().StringVar(&opts.req.SenderEmail, "sender-email", "", "Sender address")
	cmd.Flags().StringVar(&opts.req.ScheduledAt, "schedule", "", "Send at this ISO 8601 time instead of immediately")
	cmd.Flags().StringToStringVar(&opts.req.GlobalVariables, "var", nil, "Campaign variable as key=value (repeatable)")
	return cmd
}

func buildEmailTestCmd(root *rootOptions) *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Send a test email to verify delivery settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEmailTest(cmd, root, email)
		},
	}
	cmd.Flags().StringVar(&email, "to", "", "Recipient address")
	cmd.MarkFlagRequired("to")
	return cmd
}

// =============================================================================
// Assessment Commands
// =============================================================================

func buildTestsCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tests",
		Short: "Manage candidate assessments",
	}
	cmd.AddCommand(
		buildTestTemplatesCmd(root),
		buildTestScheduleCmd(root),
		buildTestScheduledCmd(root),
	)
	return cmd
}

func buildTestTemplatesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List or create assessment templates",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List assessment templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestTemplatesList(cmd, root)
		},
	}

	tmpl := api.TestTemplate{IsActive: true}
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an assessment template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestTemplatesCreate(cmd, root, tmpl)
		},
	}
	create.Flags().StringVar(&tmpl.Name, "name", "", "Template name")
	create.Flags().StringVar(&tmpl.Description, "description", "", "Description")
	create.Flags().StringVar(&tmpl.Category, "category", "", "Category")
	create.Flags().IntVar(&tmpl.DurationMinutes, "duration", 0, "Duration in minutes")
	create.Flags().IntVar(&tmpl.TotalQuestions, "questions", 0, "Number of questions")
	create.Flags().Float64Var(&tmpl.PassingScore, "passing-score", 0, "Passing score")
	create.Flags().StringVar(&tmpl.Instructions, "instructions", "", "Candidate instructions")
	create.Flags().BoolVar(&tmpl.IsActive, "active", true, "Template is active")

	cmd.AddCommand(list, create)
	return cmd
}

func buildTestScheduleCmd(root *rootOptions) *cobra.Command {
	var req api.ScheduleTestRequest
	cmd := &cobra.Command{
		Use:     "schedule",
		Short:   "Schedule an assessment for candidates",
		Example: `  navihire tests schedule --candidate 12,13 --template 2 --date 2025-03-01T10:00:00Z`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestSchedule(cmd, root, req)
		},
	}
	cmd.Flags().IntSliceVar(&req.CandidateIDs, "candidate", nil, "Candidate ids")
	cmd.Flags().IntVar(&req.TemplateID, "template", 0, "Assessment template id")
	cmd.Flags().StringVar(&req.ScheduledDate, "date", "", "Scheduled date (ISO 8601)")
	cmd.Flags().IntVar(&req.JobID, "job", 0, "Job id")
	cmd.Flags().IntVar(&req.ValidityDays, "validity-days", 0, "Days the link stays valid (backend default 7)")
	cmd.Flags().IntVar(&req.TimeLimit, "time-limit", 0, "Time limit in minutes (backend default 60)")
	return cmd
}

func buildTestScheduledCmd(root *rootOptions) *cobra.Command {
	var (
		candidateID int
		status      string
	)
	cmd := &cobra.Command{
		Use:   "scheduled",
		Short: "List scheduled assessments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTestScheduled(cmd, root, candidateID, status)
		},
	}
	cmd.Flags().IntVar(&candidateID, "candidate", 0, "Only this candidate")
	cmd.Flags().StringVar(&status, "status", "", "Only this status")
	return cmd
}

// =============================================================================
// Resume Commands
// =============================================================================

func buildResumesCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resumes",
		Short: "Upload candidate resumes",
	}

	var jobID string
	upload := &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload and parse resumes (.pdf, .doc, .docx, .txt)",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResumesUpload(cmd, root, args, jobID)
		},
	}
	upload.Flags().StringVar(&jobID, "job", "", "Match resumes against this job id")

	cmd.AddCommand(upload)
	return cmd
}

// =============================================================================
// Version Command
// =============================================================================

func buildVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "navihire %s\n", version.String())
		},
	}
}
