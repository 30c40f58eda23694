package uproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePublish(t *testing.T) {
	msg := NewPublishMessage(MustParseURI("//pub/1/1/8001"), nil, PayloadFormatRaw)
	assert.NoError(t, ValidateAttributes(msg.Attributes))

	bad := msg.Attributes.Clone()
	bad.Source = MustParseURI("//pub/1/1/1") // rpc method, not a topic
	assert.Error(t, ValidateAttributes(bad))

	withSink := msg.Attributes.Clone()
	withSink.Sink = MustParseURI("//sub/2/1/0")
	assert.Error(t, ValidateAttributes(withSink))
}

func TestValidateNotification(t *testing.T) {
	msg := NewNotificationMessage(
		MustParseURI("//pub/1/1/8001"),
		MustParseURI("//sub/2/1/0"),
		nil, PayloadFormatRaw,
	)
	assert.NoError(t, ValidateAttributes(msg.Attributes))

	bad := msg.Attributes.Clone()
	bad.Sink = MustParseURI("//sub/2/1/3") // sink must be the response slot
	assert.Error(t, ValidateAttributes(bad))
}

func TestValidateRequest(t *testing.T) {
	msg := NewRequestMessage(
		MustParseURI("//caller/12/1/0"),
		MustParseURI("//callee/4/1/3"),
		nil, 1000, PayloadFormatRaw,
	)
	assert.NoError(t, ValidateAttributes(msg.Attributes))

	noTTL := msg.Attributes.Clone()
	noTTL.TTLms = 0
	assert.Error(t, ValidateAttributes(noTTL))

	badSink := msg.Attributes.Clone()
	badSink.Sink = MustParseURI("//callee/4/1/8001") // topic, not a method
	assert.Error(t, ValidateAttributes(badSink))
}

func TestValidateResponse(t *testing.T) {
	request := NewRequestMessage(
		MustParseURI("//caller/12/1/0"),
		MustParseURI("//callee/4/1/3"),
		nil, 1000, PayloadFormatRaw,
	)
	response := NewResponseMessage(request, nil, PayloadFormatRaw)
	assert.NoError(t, ValidateAttributes(response.Attributes))
	assert.Equal(t, request.Attributes.ID, response.Attributes.ReqID)

	noReqID := response.Attributes.Clone()
	noReqID.ReqID = nil
	assert.Error(t, ValidateAttributes(noReqID))
}

func TestValidateUnknownType(t *testing.T) {
	attrs := &UAttributes{
		ID:     NewUUID(),
		Type:   UMessageType(42),
		Source: MustParseURI("//pub/1/1/8001"),
	}
	assert.Error(t, ValidateAttributes(attrs))
	assert.Error(t, ValidateAttributes(nil))
}
