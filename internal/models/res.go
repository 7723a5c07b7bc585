package models

type ApiResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalEvents int64 `json:"totalEvents"`
	HasMore     bool  `json:"hasMore"`
}

func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return &Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalEvents: total,
		HasMore:     page < totalPages,
	}
}

func SuccessResponse(data interface{}, message string) ApiResponse {
	return ApiResponse{
		Success: true,
		Data:    data,
		Message: message,
	}
}

func ErrorResponse(message string) ApiResponse {
	return ApiResponse{
		Success: false,
		Message: message,
	}
}

func PaginatedResponse(data interface{}, p *Pagination) ApiResponse {
	return ApiResponse{
		Success:    true,
		Data:       data,
		Pagination: p,
	}
}
