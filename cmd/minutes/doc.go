// Package main hosts the minutes CLI entrypoint and command graph.
//
// The Cobra command tree turns terminal invocations into calls on the shared
// meeting service: processing note files into PDF reports, transcribing audio,
// browsing and pruning the meeting history, and running the HTTP API. It
// resolves configuration once per invocation and builds the model client,
// pipeline and store on demand so read-only commands never touch the model.
package main
