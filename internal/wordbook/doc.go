// Package wordbook turns Notion pages into vocabulary review records.
//
// Words and example sentences live in two Notion databases. A Schema maps
// each semantic role (section, sequence number, status, ...) to the property
// names that may carry it in one collection; NormalizeWord and
// NormalizeSentence use it to build flat records from raw pages. Service
// exposes the review set to UI collaborators through a TTL Cache that is
// invalidated when a word's status changes.
package wordbook
