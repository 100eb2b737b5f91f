// Package notes screens raw meeting notes before they are sent to the model.
//
// Validate is a pure function over the note text and a pair of length limits.
// It rejects empty, too short, too long, degenerate (few distinct characters),
// word-poor, and symbol-heavy input, in that order, and reports the first
// failure as a *RejectedError carrying both a short reason and the message
// shown to the person who typed the notes. Lengths are counted in runes.
package notes
