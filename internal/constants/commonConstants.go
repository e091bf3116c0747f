package constants

import "time"

type (
	APIStatus string
	QueryTag  string
)

const (
	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	QueryTagSearch QueryTag = "search"
	QueryTagDetail QueryTag = "detail"
)

const (
	// SearchResultLimit is sent as the limit parameter on every search request.
	SearchResultLimit = 25

	DefaultStaleTime = 30 * time.Second
	DefaultGCTime    = 5 * time.Minute

	RapidAPIHostHeader = "x-rapidapi-host"
	RapidAPIKeyHeader  = "x-rapidapi-key"
)
