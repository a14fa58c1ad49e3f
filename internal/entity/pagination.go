package entity

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type PaginationInput struct {
	Limit  int
	Offset int
}

// NewPaginationInput clamps the page window: a non-positive limit falls back
// to the default one, anything above MaxPageLimit is capped.
func NewPaginationInput(limit int, offset int) *PaginationInput {
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	return &PaginationInput{
		Limit:  limit,
		Offset: offset,
	}
}

// Window returns the [from, to) slice bounds of the page within n items.
func (p *PaginationInput) Window(n int) (int, int) {
	from := p.Offset
	if from > n {
		from = n
	}
	to := from + p.Limit
	if to > n {
		to = n
	}

	return from, to
}
