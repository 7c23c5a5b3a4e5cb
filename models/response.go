package models

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Error   *string     `json:"error"`
	Data    interface{} `json:"data"`
}

type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

type PaginationLinks struct {
	Self string `json:"self"`
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
}

type PaginatedData struct {
	Items interface{}      `json:"items"`
	Meta  PaginationMeta   `json:"meta"`
	Links *PaginationLinks `json:"links,omitempty"`
}
