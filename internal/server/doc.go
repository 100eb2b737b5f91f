// Package server exposes MeetingService over a JSON HTTP API.
//
// Routes:
//
//	POST   /api/meetings              {"notes": "..."} -> report
//	GET    /api/meetings[?search=]    history, newest first
//	GET    /api/meetings/{id}         one meeting
//	DELETE /api/meetings/{id}         remove meeting and its PDF
//	GET    /api/meetings/{id}/related similar meetings
//	GET    /api/reports/{name}        PDF download
//	POST   /api/transcribe            multipart field "audio_file"
//	GET    /api/stats                 history totals
//	GET    /api/health                model and dependency readiness
//
// Failures are returned as {"error": "...", "stage": "..."} with a status
// derived from the services error markers. When paths.api_token is set every
// route requires a bearer token. Start takes a file lock in the data
// directory so only one server owns a history database.
package server
