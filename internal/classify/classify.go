// Package classify decides which interaction kinds a (source, sink)
// filter pair can carry. The decision is a pure function of the two
// resource IDs; wildcards make several kinds possible at once, so the
// result is a flag set rather than a single type.
package classify

import (
	"strings"

	"github.com/ehrlich-b/go-uptransport/uproto"
)

// MessageFlag is a bit set over the four interaction kinds.
type MessageFlag uint8

const (
	FlagPublish MessageFlag = 1 << iota
	FlagNotification
	FlagRequest
	FlagResponse
)

// Has reports whether all bits of f2 are set in f.
func (f MessageFlag) Has(f2 MessageFlag) bool {
	return f&f2 == f2
}

// String renders the set for logs, e.g. "NOTIFICATION|RESPONSE".
func (f MessageFlag) String() string {
	var parts []string
	if f.Has(FlagPublish) {
		parts = append(parts, "PUBLISH")
	}
	if f.Has(FlagNotification) {
		parts = append(parts, "NOTIFICATION")
	}
	if f.Has(FlagRequest) {
		parts = append(parts, "REQUEST")
	}
	if f.Has(FlagResponse) {
		parts = append(parts, "RESPONSE")
	}
	if len(parts) == 0 {
		return "NONE"
	}
	return strings.Join(parts, "|")
}

// Resource-ID predicates over the uProtocol partitioning.
func isRPC(rid uint32) bool {
	return rid >= uproto.ResourceIDMinRPC && rid <= uproto.ResourceIDMaxRPC
}

func isTopic(rid uint32) bool {
	return rid >= uproto.ResourceIDMinTopic && rid <= uproto.ResourceIDMaxTopic
}

// Classify maps the (source, sink) resource IDs onto the flag set of
// interaction kinds the pair can describe. A nil sink means "no sink".
// An empty result means the combination is invalid; callers reject it.
//
//	| src rid     | sink rid | flags                              |
//	|-------------|----------|------------------------------------|
//	| topic, FFFF | absent   | PUBLISH                            |
//	| topic       | 0, FFFF  | NOTIFICATION                       |
//	| FFFF        | 0        | NOTIFICATION, RESPONSE             |
//	| FFFF        | FFFF     | NOTIFICATION, REQUEST, RESPONSE    |
//	| 0, FFFF     | rpc      | REQUEST                            |
//	| 0           | FFFF     | REQUEST                            |
//	| rpc         | 0, FFFF  | RESPONSE                           |
func Classify(source, sink *uproto.UUri) MessageFlag {
	var flag MessageFlag

	src := source.ResourceID
	if sink == nil {
		if isTopic(src) || src == uproto.WildcardResourceID {
			flag |= FlagPublish
		}
		return flag
	}

	dst := sink.ResourceID

	if (isTopic(src) || src == uproto.WildcardResourceID) &&
		(dst == uproto.ResourceIDResponse || dst == uproto.WildcardResourceID) {
		flag |= FlagNotification
	}

	if (src == uproto.ResourceIDResponse || src == uproto.WildcardResourceID) &&
		(isRPC(dst) || dst == uproto.WildcardResourceID) {
		flag |= FlagRequest
	}

	if (isRPC(src) || src == uproto.WildcardResourceID) &&
		(dst == uproto.ResourceIDResponse || dst == uproto.WildcardResourceID) {
		flag |= FlagResponse
	}

	return flag
}
