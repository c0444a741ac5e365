package handler

import "github.com/finbook/backend/internal/interfaces/http/dto"

// APIResponse is the typed envelope shape referenced by the OpenAPI
// annotations. At runtime handlers marshal dto.Response; this generic
// mirror exists so swag can document the data field per endpoint.
// @Description Standard API response wrapper with typed data field
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope shape for the OpenAPI annotations.
// @Description Standard error response
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

// SuccessResponse is the bare success envelope for endpoints with no payload.
// @Description Simple success response without data
type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

// CountData is the payload of endpoints that return a bare count.
// @Description Count data
type CountData struct {
	Count int64 `json:"count"`
}
