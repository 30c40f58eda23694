// Package key maps uProtocol URIs onto the overlay's hierarchical key
// expressions.
//
// Key grammar:
//
//	key      := "up/" segment "/" (segment | "{}/{}/{}/{}")
//	segment  := authority "/" hex "/" hex "/" hex
//
// Numeric fields render as uppercase hex without padding; wildcard
// sentinels render as "*". The literal "{}/{}/{}/{}" quad stands in for
// an absent sink, so a subscription whose sink filter is all-wildcard
// ("*/*/*/*") still intersects publishes that carry no sink.
package key

import (
	"fmt"

	"github.com/ehrlich-b/go-uptransport/uproto"
)

// Prefix is the root segment of every key this transport produces.
const Prefix = "up"

// emptySink is the placeholder quad used when a message has no sink.
const emptySink = "{}/{}/{}/{}"

// Segment renders one URI as its four-element key segment. An empty
// authority inherits localAuthority.
func Segment(localAuthority string, uri *uproto.UUri) string {
	authority := uri.AuthorityName
	if authority == "" {
		authority = localAuthority
	}

	ueID := "*"
	if !uri.HasWildcardEntityID() {
		ueID = fmt.Sprintf("%X", uri.UeID)
	}
	version := "*"
	if !uri.HasWildcardVersion() {
		version = fmt.Sprintf("%X", uri.UeVersionMajor)
	}
	resource := "*"
	if !uri.HasWildcardResourceID() {
		resource = fmt.Sprintf("%X", uri.ResourceID)
	}

	return authority + "/" + ueID + "/" + version + "/" + resource
}

// ToKey renders the full overlay key for a (source, sink) pair. A nil
// sink produces the placeholder quad.
func ToKey(localAuthority string, src, sink *uproto.UUri) string {
	dst := emptySink
	if sink != nil {
		dst = Segment(localAuthority, sink)
	}
	return Prefix + "/" + Segment(localAuthority, src) + "/" + dst
}
