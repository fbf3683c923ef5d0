package apperror

import "errors"

var (
	ErrRoundNotFound      = errors.New("round not found")
	ErrInvalidPlayerIndex = errors.New("invalid player index")
)
