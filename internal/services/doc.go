// Package services defines shared utilities consumed by the pipeline stages
// and the surfaces around them.
//
// Key responsibilities:
//   - Context helpers that stamp request IDs, stage names, and stored meeting
//     IDs for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is and map them to HTTP status codes.
//
// External integrations (the Ollama client) live in subpackages.
package services
