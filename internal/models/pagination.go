package models

// PaginatedResponse est l'enveloppe renvoyée par toutes les routes paginées
type PaginatedResponse struct {
	Message     string      `json:"message"`
	StatusCode  int         `json:"statusCode"`
	Data        interface{} `json:"data"`
	CurrentPage int         `json:"currentPage"`
	PageSize    int         `json:"pageSize"`
	TotalCount  int         `json:"totalCount"`
	TotalPages  int         `json:"totalPages"`
	HasPrevious bool        `json:"hasPrevious"`
	HasNext     bool        `json:"hasNext"`
}

// NewPaginatedResponse construit l'enveloppe avec les métadonnées de pagination
// calculées: totalPages = ceil(totalCount / pageSize), hasPrevious = page > 1,
// hasNext = page < totalPages
func NewPaginatedResponse(message string, statusCode int, data interface{}, page, pageSize, totalCount int) PaginatedResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (totalCount + pageSize - 1) / pageSize
	}

	return PaginatedResponse{
		Message:     message,
		StatusCode:  statusCode,
		Data:        data,
		CurrentPage: page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}
