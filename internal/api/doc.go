// Package api provides the NaviHire backend REST client.
//
// Endpoints (under the configured base address, default http://localhost:8000):
//   - GET  /api/health
//   - POST /api/v1/resumes/upload (multipart)
//   - /api/v1/emails/{templates,signatures,addons,send,send-bulk,test}
//   - /api/v1/tests/{templates,schedule,scheduled}
//   - POST /api/v1/flights/search
//
// The backend reports most application failures as HTTP 200 with
// {"success": false, "error": "..."}; those surface as *BackendError.
// Transport and HTTP failures surface as *APIError.
package api
