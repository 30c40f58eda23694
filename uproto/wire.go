package uproto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Wire codec for UAttributes and its nested records. Field numbers
// follow the uProtocol v1 protobuf schema; zero-valued fields are
// omitted and unknown fields are skipped on decode, so attachments
// written by other language bindings decode here and vice versa.

// UAttributes field numbers.
const (
	fieldAttrID              = 1
	fieldAttrType            = 2
	fieldAttrSource          = 3
	fieldAttrSink            = 4
	fieldAttrPriority        = 5
	fieldAttrTTL             = 6
	fieldAttrPermissionLevel = 7
	fieldAttrCommStatus      = 8
	fieldAttrReqID           = 9
	fieldAttrToken           = 10
	fieldAttrTraceParent     = 11
	fieldAttrPayloadFormat   = 12
)

// UUri field numbers.
const (
	fieldURIAuthority  = 1
	fieldURIUeID       = 2
	fieldURIVersion    = 3
	fieldURIResourceID = 4
)

// UUID field numbers.
const (
	fieldUUIDMSB = 1
	fieldUUIDLSB = 2
)

// MarshalAttributes serializes the attributes record.
func MarshalAttributes(a *UAttributes) []byte {
	var b []byte
	if !a.ID.IsZero() {
		b = appendMessage(b, fieldAttrID, marshalUUID(a.ID))
	}
	if a.Type != MessageTypeUnspecified {
		b = appendVarintField(b, fieldAttrType, uint64(a.Type))
	}
	if a.Source != nil {
		b = appendMessage(b, fieldAttrSource, MarshalURI(a.Source))
	}
	if a.Sink != nil {
		b = appendMessage(b, fieldAttrSink, MarshalURI(a.Sink))
	}
	if a.Priority != PriorityUnspecified {
		b = appendVarintField(b, fieldAttrPriority, uint64(a.Priority))
	}
	if a.TTLms != 0 {
		b = appendVarintField(b, fieldAttrTTL, uint64(a.TTLms))
	}
	if a.PermissionLevel != 0 {
		b = appendVarintField(b, fieldAttrPermissionLevel, uint64(a.PermissionLevel))
	}
	if a.CommStatus != 0 {
		b = appendVarintField(b, fieldAttrCommStatus, uint64(a.CommStatus))
	}
	if !a.ReqID.IsZero() {
		b = appendMessage(b, fieldAttrReqID, marshalUUID(a.ReqID))
	}
	if a.Token != "" {
		b = appendStringField(b, fieldAttrToken, a.Token)
	}
	if a.TraceParent != "" {
		b = appendStringField(b, fieldAttrTraceParent, a.TraceParent)
	}
	if a.PayloadFormat != PayloadFormatUnspecified {
		b = appendVarintField(b, fieldAttrPayloadFormat, uint64(a.PayloadFormat))
	}
	return b
}

// UnmarshalAttributes deserializes an attributes record.
func UnmarshalAttributes(data []byte) (*UAttributes, error) {
	a := &UAttributes{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("attributes: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldAttrID && typ == protowire.BytesType:
			v, n, err := consumeUUID(data)
			if err != nil {
				return nil, err
			}
			a.ID = v
			data = data[n:]
		case num == fieldAttrType && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.Type = UMessageType(v)
			data = data[n:]
		case num == fieldAttrSource && typ == protowire.BytesType:
			v, n, err := consumeURI(data)
			if err != nil {
				return nil, err
			}
			a.Source = v
			data = data[n:]
		case num == fieldAttrSink && typ == protowire.BytesType:
			v, n, err := consumeURI(data)
			if err != nil {
				return nil, err
			}
			a.Sink = v
			data = data[n:]
		case num == fieldAttrPriority && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.Priority = UPriority(v)
			data = data[n:]
		case num == fieldAttrTTL && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.TTLms = uint32(v)
			data = data[n:]
		case num == fieldAttrPermissionLevel && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.PermissionLevel = uint32(v)
			data = data[n:]
		case num == fieldAttrCommStatus && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.CommStatus = uint32(v)
			data = data[n:]
		case num == fieldAttrReqID && typ == protowire.BytesType:
			v, n, err := consumeUUID(data)
			if err != nil {
				return nil, err
			}
			a.ReqID = v
			data = data[n:]
		case num == fieldAttrToken && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.Token = v
			data = data[n:]
		case num == fieldAttrTraceParent && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.TraceParent = v
			data = data[n:]
		case num == fieldAttrPayloadFormat && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			a.PayloadFormat = UPayloadFormat(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return a, nil
}

// MarshalURI serializes a URI record.
func MarshalURI(u *UUri) []byte {
	var b []byte
	if u.AuthorityName != "" {
		b = appendStringField(b, fieldURIAuthority, u.AuthorityName)
	}
	if u.UeID != 0 {
		b = appendVarintField(b, fieldURIUeID, uint64(u.UeID))
	}
	if u.UeVersionMajor != 0 {
		b = appendVarintField(b, fieldURIVersion, uint64(u.UeVersionMajor))
	}
	if u.ResourceID != 0 {
		b = appendVarintField(b, fieldURIResourceID, uint64(u.ResourceID))
	}
	return b
}

// UnmarshalURI deserializes a URI record.
func UnmarshalURI(data []byte) (*UUri, error) {
	u := &UUri{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("uri: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldURIAuthority && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			u.AuthorityName = v
			data = data[n:]
		case num == fieldURIUeID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			u.UeID = uint32(v)
			data = data[n:]
		case num == fieldURIVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			u.UeVersionMajor = uint32(v)
			data = data[n:]
		case num == fieldURIResourceID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			u.ResourceID = uint32(v)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return u, nil
}

func marshalUUID(id *UUID) []byte {
	var b []byte
	if id.MSB != 0 {
		b = appendVarintField(b, fieldUUIDMSB, id.MSB)
	}
	if id.LSB != 0 {
		b = appendVarintField(b, fieldUUIDLSB, id.LSB)
	}
	return b
}

func unmarshalUUID(data []byte) (*UUID, error) {
	id := &UUID{}
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("uuid: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == fieldUUIDMSB && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			id.MSB = v
			data = data[n:]
		case num == fieldUUIDLSB && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			id.LSB = v
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return nil, protowire.ParseError(n)
			}
			data = data[n:]
		}
	}
	return id, nil
}

func consumeUUID(data []byte) (*UUID, int, error) {
	raw, n := protowire.ConsumeBytes(data)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	id, err := unmarshalUUID(raw)
	if err != nil {
		return nil, 0, err
	}
	return id, n, nil
}

func consumeURI(data []byte) (*UUri, int, error) {
	raw, n := protowire.ConsumeBytes(data)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	u, err := UnmarshalURI(raw)
	if err != nil {
		return nil, 0, err
	}
	return u, n, nil
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendStringField(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}
