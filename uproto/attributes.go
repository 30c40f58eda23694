package uproto

// UMessageType discriminates the four interaction kinds.
type UMessageType uint32

const (
	MessageTypeUnspecified  UMessageType = 0
	MessageTypePublish      UMessageType = 1
	MessageTypeRequest      UMessageType = 2
	MessageTypeResponse     UMessageType = 3
	MessageTypeNotification UMessageType = 4
)

// String returns the uProtocol name of the message type.
func (t UMessageType) String() string {
	switch t {
	case MessageTypePublish:
		return "PUBLISH"
	case MessageTypeRequest:
		return "REQUEST"
	case MessageTypeResponse:
		return "RESPONSE"
	case MessageTypeNotification:
		return "NOTIFICATION"
	default:
		return "UNSPECIFIED"
	}
}

// UPriority is the uProtocol QoS class.
type UPriority uint32

const (
	PriorityUnspecified UPriority = 0
	PriorityCS0         UPriority = 1
	PriorityCS1         UPriority = 2
	PriorityCS2         UPriority = 3
	PriorityCS3         UPriority = 4
	PriorityCS4         UPriority = 5
	PriorityCS5         UPriority = 6
	PriorityCS6         UPriority = 7
)

// UPayloadFormat describes the serialization of the message payload.
type UPayloadFormat uint32

const (
	PayloadFormatUnspecified     UPayloadFormat = 0
	PayloadFormatProtobufWrapped UPayloadFormat = 1
	PayloadFormatProtobuf        UPayloadFormat = 2
	PayloadFormatJSON            UPayloadFormat = 3
	PayloadFormatSomeIP          UPayloadFormat = 4
	PayloadFormatSomeIPTLV       UPayloadFormat = 5
	PayloadFormatRaw             UPayloadFormat = 6
	PayloadFormatText            UPayloadFormat = 7
	PayloadFormatShm             UPayloadFormat = 8
)

// UAttributes is the message metadata record travelling alongside every
// payload. TTLms of 0 means "no ttl set".
type UAttributes struct {
	ID              *UUID
	Type            UMessageType
	Source          *UUri
	Sink            *UUri
	Priority        UPriority
	TTLms           uint32
	PermissionLevel uint32
	CommStatus      uint32
	ReqID           *UUID
	Token           string
	TraceParent     string
	PayloadFormat   UPayloadFormat
}

// Clone returns a deep copy of the attributes, nil for nil.
func (a *UAttributes) Clone() *UAttributes {
	if a == nil {
		return nil
	}
	c := *a
	c.ID = a.ID.Clone()
	c.Source = a.Source.Clone()
	c.Sink = a.Sink.Clone()
	c.ReqID = a.ReqID.Clone()
	return &c
}

// UMessage pairs attributes with an opaque payload.
type UMessage struct {
	Attributes *UAttributes
	Payload    []byte
}

// Listener receives messages delivered by a transport. Implementations
// must be comparable by identity (use a pointer receiver type); the
// transport keys its registry on the listener value itself.
type Listener interface {
	OnReceive(msg *UMessage)
}

type listenerFunc struct {
	fn func(msg *UMessage)
}

func (l *listenerFunc) OnReceive(msg *UMessage) {
	l.fn(msg)
}

// ListenerFunc wraps a plain function in a Listener with a stable
// identity. Each call returns a distinct listener; hold on to the
// returned value to unregister it later.
func ListenerFunc(fn func(msg *UMessage)) Listener {
	return &listenerFunc{fn: fn}
}

// NewPublishMessage builds a well-formed publish message on a topic.
func NewPublishMessage(topic *UUri, payload []byte, format UPayloadFormat) *UMessage {
	return &UMessage{
		Attributes: &UAttributes{
			ID:            NewUUID(),
			Type:          MessageTypePublish,
			Source:        topic.Clone(),
			Priority:      PriorityCS1,
			PayloadFormat: format,
		},
		Payload: payload,
	}
}

// NewNotificationMessage builds a notification from a topic to a
// destination entity's response slot.
func NewNotificationMessage(source, sink *UUri, payload []byte, format UPayloadFormat) *UMessage {
	return &UMessage{
		Attributes: &UAttributes{
			ID:            NewUUID(),
			Type:          MessageTypeNotification,
			Source:        source.Clone(),
			Sink:          sink.Clone(),
			Priority:      PriorityCS1,
			PayloadFormat: format,
		},
		Payload: payload,
	}
}

// NewRequestMessage builds an RPC request from the caller's response
// slot to a method URI. RPC traffic rides at CS4 or above.
func NewRequestMessage(source, method *UUri, payload []byte, ttlMs uint32, format UPayloadFormat) *UMessage {
	return &UMessage{
		Attributes: &UAttributes{
			ID:            NewUUID(),
			Type:          MessageTypeRequest,
			Source:        source.Clone(),
			Sink:          method.Clone(),
			Priority:      PriorityCS4,
			TTLms:         ttlMs,
			PayloadFormat: format,
		},
		Payload: payload,
	}
}

// NewResponseMessage builds the RPC response matching a request: the
// (source, sink) pair is inverted and ReqID carries the request's ID.
func NewResponseMessage(request *UMessage, payload []byte, format UPayloadFormat) *UMessage {
	ra := request.Attributes
	return &UMessage{
		Attributes: &UAttributes{
			ID:            NewUUID(),
			Type:          MessageTypeResponse,
			Source:        ra.Sink.Clone(),
			Sink:          ra.Source.Clone(),
			Priority:      ra.Priority,
			ReqID:         ra.ID.Clone(),
			PayloadFormat: format,
		},
		Payload: payload,
	}
}
