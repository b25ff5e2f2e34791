package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Result forma única de las respuestas: {data, error}. Exactamente uno de los dos es no nulo.
type Result struct {
	Data  any     `json:"data"`
	Error *string `json:"error"`
}

// OK resultado exitoso.
func OK(data any) Result {
	return Result{Data: data}
}

// Fail resultado con error.
func Fail(message string) Result {
	return Result{Error: &message}
}
