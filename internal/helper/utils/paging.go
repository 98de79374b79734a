package utils

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

// ClampPage bounds limit/offset taken from query strings.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
