package dto

import "github.com/jhoicas/dresssync-api/internal/domain/table"

// Los DTO de /api/table usan claves capitalizadas (PageSize, Where, Data...),
// que es el contrato que consume el frontend.

// TablePageRequest consulta paginada.
type TablePageRequest struct {
	PageSize int               `json:"PageSize" validate:"gte=0"`
	PageNo   int               `json:"PageNo" validate:"gte=0"`
	Where    []table.Condition `json:"Where"`
	Keyword  string            `json:"Keyword" validate:"max=200"`
	OrderBy  string            `json:"OrderBy"`
	OrderDir string            `json:"OrderDir" validate:"omitempty,oneof=asc desc ASC DESC"`
}

// TablePageResponse página de filas.
type TablePageResponse struct {
	Data       []table.Row `json:"Data"`
	Total      int         `json:"Total"`
	PageNo     int         `json:"PageNo"`
	PageSize   int         `json:"PageSize"`
	TotalPages int         `json:"TotalPages"`
}

// TableCreateRequest alta de una fila.
type TableCreateRequest struct {
	Data map[string]any `json:"Data" validate:"required"`
}

// TableUpdateRequest modificación de una fila por clave primaria.
type TableUpdateRequest struct {
	ID   string         `json:"Id" validate:"required"`
	Data map[string]any `json:"Data" validate:"required"`
}

// TableDeleteRequest baja de una fila.
type TableDeleteRequest struct {
	ID string `json:"Id" validate:"required"`
}

// TableRowResponse fila creada o actualizada.
type TableRowResponse struct {
	Data table.Row `json:"Data"`
}

// TableDeleteResponse resultado del borrado.
type TableDeleteResponse struct {
	Success bool `json:"Success"`
}
