package introspect

import "errors"

var (
	ErrUnsupportedProvider = errors.New("unsupported database engine")
	ErrIntrospectionFailed = errors.New("database introspection failed")
)
