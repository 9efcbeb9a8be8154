package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// ResumeFile is one file to upload.
type ResumeFile struct {
	Name    string
	Content io.Reader
}

// UploadResumes sends resumes for parsing and, with a job id, matching.
// Files the backend would skip are rejected up front.
func (c *Client) UploadResumes(ctx context.Context, files []ResumeFile, jobID string) (*ResumeUploadResponse, error) {
	if len(files) == 0 {
		return nil, missing("files")
	}
	for _, f := range files {
		if !IsResumeFile(f.Name) {
			return nil, fmt.Errorf("unsupported resume file %q: want .pdf, .doc, .docx or .txt", f.Name)
		}
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile("files", f.Name)
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if jobID != "" {
		if err := w.WriteField("job_id", jobID); err != nil {
			return nil, fmt.Errorf("write job_id: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/api/v1/resumes/upload", nil, &buf, w.FormDataContentType())
	if err != nil {
		return nil, fmt.Errorf("upload resumes: %w", err)
	}

	var resp ResumeUploadResponse
	if err := decode(body, &resp); err != nil {
		return nil, fmt.Errorf("upload resumes: %w", err)
	}
	return &resp, nil
}
