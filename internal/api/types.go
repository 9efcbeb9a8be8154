package api

import "encoding/json"

// HealthResponse from GET /api/health
type HealthResponse struct {
	Status           string `json:"status"`
	Message          string `json:"message"`
	SupervisorStatus string `json:"supervisor_status"`
	FrontendBuild    string `json:"frontend_build"`
	Timestamp        string `json:"timestamp"`
}

// Healthy reports whether the backend said it is running.
func (h *HealthResponse) Healthy() bool {
	return h.Status == "healthy"
}

// EmailTemplate from GET /api/v1/emails/templates
type EmailTemplate struct {
	ID               int      `json:"id"`
	Name             string   `json:"name"`
	Category         string   `json:"category"`
	Subject          string   `json:"subject"`
	BodyHTML         string   `json:"body_html"`
	Variables        []string `json:"variables"`
	UsageCount       int      `json:"usage_count"`
	LastUsed         *string  `json:"last_used"`
	IsSystemTemplate bool     `json:"is_system_template"`
}

// CreateEmailTemplateRequest for POST /api/v1/emails/templates
type CreateEmailTemplateRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Subject   string `json:"subject"`
	BodyHTML  string `json:"body_html"`
	CreatedBy int    `json:"created_by,omitempty"`
}

// CreateEmailTemplateResponse from POST /api/v1/emails/templates
type CreateEmailTemplateResponse struct {
	Success    bool     `json:"success"`
	TemplateID int      `json:"template_id"`
	Variables  []string `json:"variables"` // Placeholders found in subject and body
	Message    string   `json:"message"`
}

// EmailTemplatesResponse from GET /api/v1/emails/templates
type EmailTemplatesResponse struct {
	Success   bool            `json:"success"`
	Templates []EmailTemplate `json:"templates"`
}

// EmailSignature from GET /api/v1/emails/signatures
type EmailSignature struct {
	ID             int    `json:"id,omitempty"`
	Name           string `json:"name"`
	HTMLContent    string `json:"html_content"`
	CompanyLogoURL string `json:"company_logo_url,omitempty"`
	CompanyName    string `json:"company_name,omitempty"`
	IsDefault      bool   `json:"is_default"`
}

// EmailSignaturesResponse from GET /api/v1/emails/signatures
type EmailSignaturesResponse struct {
	Success    bool             `json:"success"`
	Signatures []EmailSignature `json:"signatures"`
}

// CreateSignatureResponse from POST /api/v1/emails/signatures
type CreateSignatureResponse struct {
	Success     bool   `json:"success"`
	SignatureID int    `json:"signature_id"`
	Message     string `json:"message"`
}

// EmailAddon from GET /api/v1/emails/addons
type EmailAddon struct {
	ID          int    `json:"id,omitempty"`
	Name        string `json:"name"`
	Type        string `json:"type"` // e.g. "footer", "disclaimer", "social_links"
	Content     string `json:"content"`
	AutoInclude bool   `json:"auto_include"`
}

// EmailAddonsResponse from GET /api/v1/emails/addons
type EmailAddonsResponse struct {
	Success bool         `json:"success"`
	Addons  []EmailAddon `json:"addons"`
}

// CreateAddonResponse from POST /api/v1/emails/addons
type CreateAddonResponse struct {
	Success bool   `json:"success"`
	AddonID int    `json:"addon_id"`
	Message string `json:"message"`
}

// SendEmailRequest for POST /api/v1/emails/send
type SendEmailRequest struct {
	TemplateID     int               `json:"template_id"`
	RecipientEmail string            `json:"recipient_email"`
	Variables      map[string]string `json:"variables,omitempty"`
}

// SendEmailResponse from POST /api/v1/emails/send
type SendEmailResponse struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Recipient    string `json:"recipient"`
	TemplateUsed string `json:"template_used"`
}

// Bulk recipient types.
const (
	RecipientIndividual = "individual" // RecipientData is one address
	RecipientBulk       = "bulk"       // RecipientData is a list of addresses or {email, name} objects
	RecipientFiltered   = "filtered"   // RecipientData is candidate filter criteria
)

// BulkRecipient is one entry of a bulk recipient list.
type BulkRecipient struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SendBulkEmailRequest for POST /api/v1/emails/send-bulk
type SendBulkEmailRequest struct {
	TemplateID      int               `json:"template_id"`
	RecipientType   string            `json:"recipient_type"`
	RecipientData   any               `json:"recipient_data"`
	Name            string            `json:"name,omitempty"`
	SenderName      string            `json:"sender_name,omitempty"`
	SenderEmail     string            `json:"sender_email,omitempty"`
	SendImmediately *bool             `json:"send_immediately,omitempty"`
	ScheduledAt     string            `json:"scheduled_at,omitempty"` // ISO 8601
	GlobalVariables map[string]string `json:"global_variables,omitempty"`
}

// SendBulkEmailResponse from POST /api/v1/emails/send-bulk
type SendBulkEmailResponse struct {
	Success         bool `json:"success"`
	CampaignID      int  `json:"campaign_id"`
	SentCount       int  `json:"sent_count"`
	FailedCount     int  `json:"failed_count"`
	TotalRecipients int  `json:"total_recipients"`
}

// TestEmailResponse from POST /api/v1/emails/test
type TestEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TestTemplate from GET /api/v1/tests/templates
type TestTemplate struct {
	ID              int     `json:"id,omitempty"`
	Name            string  `json:"name"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	DurationMinutes int     `json:"duration_minutes,omitempty"`
	TotalQuestions  int     `json:"total_questions,omitempty"`
	PassingScore    float64 `json:"passing_score,omitempty"`
	Instructions    string  `json:"instructions,omitempty"`
	IsActive        bool    `json:"is_active"`
}

// TestTemplatesResponse from GET /api/v1/tests/templates
type TestTemplatesResponse struct {
	Success   bool           `json:"success"`
	Templates []TestTemplate `json:"templates"`
}

// CreateTestTemplateResponse from POST /api/v1/tests/templates
type CreateTestTemplateResponse struct {
	Success    bool   `json:"success"`
	TemplateID int    `json:"template_id"`
	Message    string `json:"message"`
}

// ScheduleTestRequest for POST /api/v1/tests/schedule
type ScheduleTestRequest struct {
	CandidateIDs  []int  `json:"candidate_ids"`
	TemplateID    int    `json:"template_id"`
	ScheduledDate string `json:"scheduled_date"` // ISO 8601
	JobID         int    `json:"job_id,omitempty"`
	ValidityDays  int    `json:"validity_days,omitempty"` // Backend default: 7
	TimeLimit     int    `json:"time_limit,omitempty"`    // Minutes, backend default: 60
}

// ScheduleTestResponse from POST /api/v1/tests/schedule
type ScheduleTestResponse struct {
	Success        bool  `json:"success"`
	ScheduledCount int   `json:"scheduled_count"`
	TestIDs        []int `json:"test_ids"`
}

// ScheduledTest from GET /api/v1/tests/scheduled
type ScheduledTest struct {
	ID            int      `json:"id"`
	TemplateName  string   `json:"template_name"`
	CandidateName string   `json:"candidate_name"`
	ScheduledDate string   `json:"scheduled_date"`
	Deadline      *string  `json:"deadline"`
	Status        string   `json:"status"`
	Score         *float64 `json:"score"`
	AccessCode    string   `json:"access_code"`
	TestLink      string   `json:"test_link"`
}

// ScheduledTestsResponse from GET /api/v1/tests/scheduled
type ScheduledTestsResponse struct {
	Success bool            `json:"success"`
	Tests   []ScheduledTest `json:"tests"`
}

// FlightSearchRequest for POST /api/v1/flights/search
type FlightSearchRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"` // YYYY-MM-DD
	Passengers  int    `json:"passengers,omitempty"`
	FlightType  string `json:"flight_type,omitempty"`
}

// FlightOffer is one search result.
type FlightOffer struct {
	ID            string     `json:"id"`
	Airline       string     `json:"airline"`
	Price         FlexString `json:"price"` // Formatted, e.g. "₹8,500"
	DepartureTime FlexString `json:"departure_time"`
	ArrivalTime   FlexString `json:"arrival_time"`
	Duration      FlexString `json:"duration"` // "2h 15m" or minutes
	Stops         int        `json:"stops"`
	BookingURL    string     `json:"bookingUrl"`
	Source        string     `json:"source"` // "serpapi" or "fallback"
}

// FlightSearchResponse from POST /api/v1/flights/search
type FlightSearchResponse struct {
	Success       bool          `json:"success"`
	FlightResults []FlightOffer `json:"flight_results"`
	TotalResults  int           `json:"total_results"`
	Note          string        `json:"note,omitempty"`
}

// ResumeUploadResponse from POST /api/v1/resumes/upload
type ResumeUploadResponse struct {
	Success          bool              `json:"success"`
	Message          string            `json:"message"`
	TotalUploaded    int               `json:"total_uploaded"`
	TotalProcessed   int               `json:"total_processed"`
	FailedCount      int               `json:"failed_count"`
	ProcessedResumes []json.RawMessage `json:"processed_resumes"`
	FailedResumes    []json.RawMessage `json:"failed_resumes"`
	MatchingResults  json.RawMessage   `json:"matching_results"`
}
