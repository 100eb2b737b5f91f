// Package ollama talks to a locally hosted Ollama server.
//
// The client issues a single non-streaming POST to /api/generate per call and
// never retries; callers decide what to do with a failure. Every failure is an
// *Error whose Kind distinguishes timeouts, refused connections, non-200
// statuses, and bodies without a "response" string, so the pipeline can pick
// a user-facing message without string matching.
package ollama
