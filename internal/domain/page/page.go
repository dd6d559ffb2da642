package page

const (
	defaultSize = 20
	maxSize     = 100
)

// Request is a zero-based page request.
type Request struct {
	Page int
	Size int
}

// Normalize clamps the request to sane bounds so repos never see a
// negative page or an unbounded size.
func (r Request) Normalize() Request {
	if r.Page < 0 {
		r.Page = 0
	}

	if r.Size <= 0 {
		r.Size = defaultSize
	}

	if r.Size > maxSize {
		r.Size = maxSize
	}

	return r
}

func (r Request) Offset() int {
	return r.Page * r.Size
}

// Page is the envelope every filtered search returns.
type Page[T any] struct {
	Items         []T `json:"items"`
	TotalElements int `json:"totalElements"`
	Page          int `json:"page"`
	Size          int `json:"size"`
}

func New[T any](items []T, total int, req Request) Page[T] {
	if items == nil {
		items = []T{}
	}

	return Page[T]{
		Items:         items,
		TotalElements: total,
		Page:          req.Page,
		Size:          req.Size,
	}
}
