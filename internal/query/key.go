package query

import (
	"strings"

	"infinite-experiment/airtrack/internal/constants"
)

// Key identifies one cached resolver call: an operation tag plus its parameter.
type Key struct {
	Tag   constants.QueryTag
	Param string
}

// SearchKey keys a search by its trimmed query.
func SearchKey(query string) Key {
	return Key{Tag: constants.QueryTagSearch, Param: strings.TrimSpace(query)}
}

// DetailKey keys a detail lookup by flight id.
func DetailKey(flightID string) Key {
	return Key{Tag: constants.QueryTagDetail, Param: flightID}
}

// Enabled is false when the governing input is blank.
func (k Key) Enabled() bool {
	return strings.TrimSpace(k.Param) != ""
}

func (k Key) String() string {
	return string(k.Tag) + ":" + k.Param
}
