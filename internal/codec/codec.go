// Package codec converts between uProtocol attribute records and the
// overlay's on-wire companions: the two-item attachment, the priority
// class, and the payload-format encoding tag.
//
// Attachment layout (stable):
//
//	item[0] = (tag="", value=[version byte])
//	item[1] = (tag="", value=serialized attributes)
//
// Item order is load-bearing; the version byte is currently 0x01.
package codec

import (
	"fmt"
	"strconv"

	"github.com/ehrlich-b/go-uptransport/internal/constants"
	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

// EncodeAttachment packs attributes into an overlay attachment.
func EncodeAttachment(attrs *uproto.UAttributes) *overlay.Attachment {
	att := &overlay.Attachment{}
	att.Add("", []byte{constants.AttachmentVersion})
	att.Add("", uproto.MarshalAttributes(attrs))
	return att
}

// DecodeAttachment unpacks attributes from an overlay attachment,
// enforcing item order and the version byte.
func DecodeAttachment(att *overlay.Attachment) (*uproto.UAttributes, error) {
	if att.Len() < 2 {
		return nil, fmt.Errorf("attachment has %d items, want 2", att.Len())
	}
	version := att.Item(0).Value
	if len(version) != 1 || version[0] != constants.AttachmentVersion {
		return nil, fmt.Errorf("attachment version mismatch: got %v, want [%#02x]", version, constants.AttachmentVersion)
	}
	attrs, err := uproto.UnmarshalAttributes(att.Item(1).Value)
	if err != nil {
		return nil, fmt.Errorf("attachment attributes: %w", err)
	}
	return attrs, nil
}

// MapPriority maps a uProtocol QoS class onto the overlay priority.
// Unspecified priority rides at DataLow, like CS1.
func MapPriority(p uproto.UPriority) overlay.Priority {
	switch p {
	case uproto.PriorityCS0:
		return overlay.PriorityBackground
	case uproto.PriorityCS1:
		return overlay.PriorityDataLow
	case uproto.PriorityCS2:
		return overlay.PriorityData
	case uproto.PriorityCS3:
		return overlay.PriorityDataHigh
	case uproto.PriorityCS4:
		return overlay.PriorityInteractiveLow
	case uproto.PriorityCS5:
		return overlay.PriorityInteractiveHigh
	case uproto.PriorityCS6:
		return overlay.PriorityRealTime
	default:
		return overlay.PriorityDataLow
	}
}

// EncodingFromPayloadFormat renders a payload format as the overlay
// encoding suffix carried on samples.
func EncodingFromPayloadFormat(f uproto.UPayloadFormat) string {
	return strconv.Itoa(int(f))
}

// PayloadFormatFromEncoding parses an overlay encoding suffix back
// into a payload format. Unknown or malformed suffixes report false.
func PayloadFormatFromEncoding(encoding string) (uproto.UPayloadFormat, bool) {
	v, err := strconv.Atoi(encoding)
	if err != nil || v < 0 || v > int(uproto.PayloadFormatShm) {
		return uproto.PayloadFormatUnspecified, false
	}
	return uproto.UPayloadFormat(v), true
}
