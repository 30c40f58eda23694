// Package uproto carries the uProtocol v1 data model used by the
// transport: URIs, UUIDs, message attributes, and their wire codec.
// The types mirror the uProtocol v1 protobuf schema field for field so
// that serialized attributes interoperate with other language bindings.
package uproto

import (
	"fmt"
	"strconv"
	"strings"
)

// Wildcard sentinels. A field carrying its sentinel matches any value
// in that position. An empty authority means "inherit local authority"
// rather than wildcard; the explicit authority wildcard is "*".
const (
	WildcardAuthority  = "*"
	WildcardEntityID   = 0xFFFF_FFFF // full entity wildcard (instance + id)
	WildcardEntityType = 0xFFFF      // low 16 bits: any entity id
	WildcardVersion    = 0xFF
	WildcardResourceID = 0xFFFF
)

// Resource-ID partitioning. These ranges drive message classification:
// 0 is the RPC response slot, (0, 0x8000) are RPC method IDs,
// [0x8000, 0xFFFE] are topic IDs, and 0xFFFF is the resource wildcard.
const (
	ResourceIDResponse = 0
	ResourceIDMinRPC   = 0x0001
	ResourceIDMaxRPC   = 0x7FFF
	ResourceIDMinTopic = 0x8000
	ResourceIDMaxTopic = 0xFFFE
)

// UUri identifies a uProtocol entity resource as the 4-tuple
// (authority, entity id, entity major version, resource id).
type UUri struct {
	AuthorityName  string
	UeID           uint32
	UeVersionMajor uint32
	ResourceID     uint32
}

// Any returns the match-all URI filter.
func Any() *UUri {
	return &UUri{
		AuthorityName:  WildcardAuthority,
		UeID:           WildcardEntityType,
		UeVersionMajor: WildcardVersion,
		ResourceID:     WildcardResourceID,
	}
}

// IsEmpty reports whether every field is the zero value.
func (u *UUri) IsEmpty() bool {
	return u == nil || (u.AuthorityName == "" && u.UeID == 0 && u.UeVersionMajor == 0 && u.ResourceID == 0)
}

// HasWildcardAuthority reports whether the authority is the "*" wildcard.
func (u *UUri) HasWildcardAuthority() bool {
	return u.AuthorityName == WildcardAuthority
}

// HasWildcardEntityID reports whether the entity id matches any entity.
// Both the full 32-bit sentinel and the 16-bit entity-id wildcard (the
// form produced by parsing "FFFF" in a URI string) count.
func (u *UUri) HasWildcardEntityID() bool {
	return u.UeID&WildcardEntityType == WildcardEntityType
}

// HasWildcardVersion reports whether the major version matches any version.
func (u *UUri) HasWildcardVersion() bool {
	return u.UeVersionMajor == WildcardVersion
}

// HasWildcardResourceID reports whether the resource id matches any resource.
func (u *UUri) HasWildcardResourceID() bool {
	return u.ResourceID == WildcardResourceID
}

// IsRPCMethod reports whether the resource id names an RPC method.
func (u *UUri) IsRPCMethod() bool {
	return u.ResourceID >= ResourceIDMinRPC && u.ResourceID <= ResourceIDMaxRPC
}

// IsTopic reports whether the resource id names a publish topic.
func (u *UUri) IsTopic() bool {
	return u.ResourceID >= ResourceIDMinTopic && u.ResourceID <= ResourceIDMaxTopic
}

// IsRPCResponse reports whether the resource id is the response slot.
func (u *UUri) IsRPCResponse() bool {
	return u.ResourceID == ResourceIDResponse
}

// Equal reports field-wise equality. Nil equals nil.
func (u *UUri) Equal(o *UUri) bool {
	if u == nil || o == nil {
		return u == o
	}
	return *u == *o
}

// Clone returns a copy of the URI, nil for nil.
func (u *UUri) Clone() *UUri {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// String renders the URI in long form, e.g. "//vehicle-a/10AB/3/80CD".
// Local URIs (empty authority) render as "/10AB/3/80CD".
func (u *UUri) String() string {
	if u == nil {
		return ""
	}
	var b strings.Builder
	if u.AuthorityName != "" {
		b.WriteString("//")
		b.WriteString(u.AuthorityName)
	}
	fmt.Fprintf(&b, "/%X/%X/%X", u.UeID, u.UeVersionMajor, u.ResourceID)
	return b.String()
}

// ParseURI parses the long form produced by String:
//
//	//authority/UEID/VER/RID   remote
//	/UEID/VER/RID              local (empty authority)
//
// Numeric fields are hex; "*" stands for the field's wildcard sentinel.
func ParseURI(s string) (*UUri, error) {
	rest := s
	uri := &UUri{}
	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		idx := strings.IndexByte(rest, '/')
		if idx < 0 {
			return nil, fmt.Errorf("uri %q: missing entity fields", s)
		}
		uri.AuthorityName = rest[:idx]
		if uri.AuthorityName == "" {
			return nil, fmt.Errorf("uri %q: empty authority", s)
		}
		rest = rest[idx+1:]
	} else if strings.HasPrefix(rest, "/") {
		rest = rest[1:]
	} else {
		return nil, fmt.Errorf("uri %q: must start with '/' or '//'", s)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 3 {
		return nil, fmt.Errorf("uri %q: want UEID/VERSION/RESOURCE, got %d fields", s, len(parts))
	}

	fields := []struct {
		name     string
		wildcard uint32
		max      uint64
		dst      *uint32
	}{
		{"entity id", WildcardEntityType, 0xFFFF_FFFF, &uri.UeID},
		{"version", WildcardVersion, 0xFF, &uri.UeVersionMajor},
		{"resource id", WildcardResourceID, 0xFFFF, &uri.ResourceID},
	}
	for i, f := range fields {
		if parts[i] == "*" {
			*f.dst = f.wildcard
			continue
		}
		v, err := strconv.ParseUint(parts[i], 16, 32)
		if err != nil || v > f.max {
			return nil, fmt.Errorf("uri %q: bad %s %q", s, f.name, parts[i])
		}
		*f.dst = uint32(v)
	}
	return uri, nil
}

// MustParseURI is ParseURI that panics on error, for tests and fixtures.
func MustParseURI(s string) *UUri {
	u, err := ParseURI(s)
	if err != nil {
		panic(err)
	}
	return u
}
