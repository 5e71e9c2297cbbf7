package stream

import "errors"

var (
	ErrUnexpectedEnd   = errors.New("gds: unexpected end of stream")
	ErrMalformedRecord = errors.New("gds: malformed record")
	ErrRealOverflow    = errors.New("gds: real value outside encodable range")
	ErrTooLarge        = errors.New("gds: record payload too large")
)
