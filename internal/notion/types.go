// Defines Notion API request and response types.

package notion

import (
	"time"
)

// PaginatedResponse is the common structure for paginated API responses.
type PaginatedResponse[T any] struct {
	Object     string  `json:"object"`
	Results    []T     `json:"results"`
	NextCursor *string `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// QueryResponse is the response from database query endpoint.
type QueryResponse = PaginatedResponse[Page]

// UsersResponse is the response from the users endpoint.
type UsersResponse = PaginatedResponse[User]

// Parent represents the parent of a page or database.
type Parent struct {
	Type       string `json:"type"` // "database_id", "page_id", "workspace", "block_id"
	DatabaseID string `json:"database_id,omitempty"`
	PageID     string `json:"page_id,omitempty"`
}

// Page represents a Notion page (including database rows).
type Page struct {
	Object         string                   `json:"object"`
	ID             string                   `json:"id"`
	CreatedTime    time.Time                `json:"created_time"`
	LastEditedTime time.Time                `json:"last_edited_time"`
	Parent         Parent                   `json:"parent"`
	Archived       bool                     `json:"archived"`
	Properties     map[string]PropertyValue `json:"properties"`
	URL            string                   `json:"url"`
}

// PropertyValue represents a property value on a page.
//
// Only the field matching Type is populated. Rollup arrays nest further
// PropertyValue items that carry a Type but usually no ID.
type PropertyValue struct {
	ID   string `json:"id,omitempty"`
	Type string `json:"type"`

	Title       []RichText      `json:"title,omitempty"`
	RichText    []RichText      `json:"rich_text,omitempty"`
	Number      *float64        `json:"number,omitempty"`
	Select      *SelectValue    `json:"select,omitempty"`
	MultiSelect []SelectValue   `json:"multi_select,omitempty"`
	Formula     *FormulaValue   `json:"formula,omitempty"`
	Relation    []RelationValue `json:"relation,omitempty"`
	Rollup      *RollupValue    `json:"rollup,omitempty"`
	Status      *StatusValue    `json:"status,omitempty"`
}

// RichText represents formatted text content.
type RichText struct {
	Type      string       `json:"type"` // "text", "mention", "equation"
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text"`
	Href      *string      `json:"href,omitempty"`
}

// TextContent represents plain text content.
type TextContent struct {
	Content string `json:"content"`
}

// SelectValue represents a select property value.
type SelectValue struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// StatusValue represents a status property value.
type StatusValue struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// FormulaValue represents a formula result.
type FormulaValue struct {
	Type    string   `json:"type"` // "string", "number", "boolean", "date"
	String  *string  `json:"string,omitempty"`
	Number  *float64 `json:"number,omitempty"`
	Boolean *bool    `json:"boolean,omitempty"`
}

// RelationValue represents a relation to another page.
type RelationValue struct {
	ID string `json:"id"`
}

// RollupValue represents a rollup result.
type RollupValue struct {
	Type     string          `json:"type"` // "number", "date", "array", "unsupported", "incomplete"
	Number   *float64        `json:"number,omitempty"`
	Array    []PropertyValue `json:"array,omitempty"`
	Function string          `json:"function"`
}

// User represents a Notion user or bot.
type User struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Type   string `json:"type,omitempty"` // "person" or "bot"
}

// PropertyPatch is the value half of a page update for one property.
//
// Only status and select updates are needed; both are addressed by option
// name.
type PropertyPatch struct {
	Status *OptionRef `json:"status,omitempty"`
	Select *OptionRef `json:"select,omitempty"`
}

// OptionRef references a status or select option by name.
type OptionRef struct {
	Name string `json:"name"`
}

// updatePageRequest is the request body for the page update endpoint.
type updatePageRequest struct {
	Properties map[string]PropertyPatch `json:"properties"`
}

// Error represents a Notion API error response.
type Error struct {
	Object  string `json:"object"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Code != "" {
		return e.Code + ": " + e.Message
	}
	return e.Message
}
