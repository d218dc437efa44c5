// Package notion provides a client for the subset of the Notion API used by
// wordbook, and the property extractor that reads typed values out of pages.
//
// It handles:
//   - API client with rate limiting (3 req/sec) and bearer authentication
//   - Cursor pagination over database queries and user listings
//   - Single-property page updates
//   - Extraction of title, rich text, number, relation, rollup, status,
//     select, multi-select and formula property values
package notion
