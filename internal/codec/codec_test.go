package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/go-uptransport/internal/constants"
	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

func sampleAttributes() *uproto.UAttributes {
	return &uproto.UAttributes{
		ID:            uproto.NewUUID(),
		Type:          uproto.MessageTypeRequest,
		Source:        uproto.MustParseURI("//vehicle1/12/1/0"),
		Sink:          uproto.MustParseURI("//vehicle1/4/1/3"),
		Priority:      uproto.PriorityCS4,
		TTLms:         2000,
		ReqID:         uproto.NewUUID(),
		PayloadFormat: uproto.PayloadFormatText,
	}
}

func TestAttachmentRoundTrip(t *testing.T) {
	attrs := sampleAttributes()

	att := EncodeAttachment(attrs)
	require.Equal(t, 2, att.Len())
	assert.Equal(t, "", att.Item(0).Tag)
	assert.Equal(t, []byte{constants.AttachmentVersion}, att.Item(0).Value)
	assert.Equal(t, "", att.Item(1).Tag)

	decoded, err := DecodeAttachment(att)
	require.NoError(t, err)
	assert.Equal(t, attrs, decoded)
}

func TestDecodeAttachmentVersionMismatch(t *testing.T) {
	att := &overlay.Attachment{}
	att.Add("", []byte{0x02})
	att.Add("", uproto.MarshalAttributes(sampleAttributes()))

	_, err := DecodeAttachment(att)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version mismatch")
}

func TestDecodeAttachmentMissingItems(t *testing.T) {
	empty := &overlay.Attachment{}
	_, err := DecodeAttachment(empty)
	assert.Error(t, err)

	onlyVersion := &overlay.Attachment{}
	onlyVersion.Add("", []byte{constants.AttachmentVersion})
	_, err = DecodeAttachment(onlyVersion)
	assert.Error(t, err)
}

func TestDecodeAttachmentBadAttributes(t *testing.T) {
	att := &overlay.Attachment{}
	att.Add("", []byte{constants.AttachmentVersion})
	// A lone 0x80 is a truncated varint tag.
	att.Add("", []byte{0x80})

	_, err := DecodeAttachment(att)
	assert.Error(t, err)
}

func TestMapPriority(t *testing.T) {
	tests := []struct {
		in   uproto.UPriority
		want overlay.Priority
	}{
		{uproto.PriorityCS0, overlay.PriorityBackground},
		{uproto.PriorityCS1, overlay.PriorityDataLow},
		{uproto.PriorityCS2, overlay.PriorityData},
		{uproto.PriorityCS3, overlay.PriorityDataHigh},
		{uproto.PriorityCS4, overlay.PriorityInteractiveLow},
		{uproto.PriorityCS5, overlay.PriorityInteractiveHigh},
		{uproto.PriorityCS6, overlay.PriorityRealTime},
		{uproto.PriorityUnspecified, overlay.PriorityDataLow},
	}
	for _, tt := range tests {
		if got := MapPriority(tt.in); got != tt.want {
			t.Errorf("MapPriority(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPayloadFormatEncoding(t *testing.T) {
	for f := uproto.PayloadFormatUnspecified; f <= uproto.PayloadFormatShm; f++ {
		enc := EncodingFromPayloadFormat(f)
		got, ok := PayloadFormatFromEncoding(enc)
		if !ok || got != f {
			t.Errorf("round trip of format %d via %q failed: got %d ok=%v", f, enc, got, ok)
		}
	}

	if _, ok := PayloadFormatFromEncoding("not-a-number"); ok {
		t.Error("malformed suffix should not parse")
	}
	if _, ok := PayloadFormatFromEncoding("99"); ok {
		t.Error("out-of-range suffix should not parse")
	}
}
