// Package textutil provides text helpers shared by the report, store, and API
// layers.
//
// The primary use cases are:
//   - Checking report file names before they touch the filesystem
//   - Sanitizing names used in download headers
//   - Building term-frequency fingerprints of meetings so related meetings
//     can be ranked by cosine similarity
//
// Tokenization case-folds text, splits on anything that is not a letter or
// digit, and drops tokens shorter than 3 runes.
package textutil
