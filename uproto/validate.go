package uproto

import "fmt"

// ValidateAttributes checks the attributes against the rules for their
// declared message type. It is the per-type validation step the
// transport runs before mapping a message onto the overlay.
func ValidateAttributes(a *UAttributes) error {
	if a == nil {
		return fmt.Errorf("attributes missing")
	}
	if a.ID.IsZero() {
		return fmt.Errorf("attributes id missing")
	}
	switch a.Type {
	case MessageTypePublish:
		return validatePublish(a)
	case MessageTypeNotification:
		return validateNotification(a)
	case MessageTypeRequest:
		return validateRequest(a)
	case MessageTypeResponse:
		return validateResponse(a)
	default:
		return fmt.Errorf("unknown message type %d", a.Type)
	}
}

func validatePublish(a *UAttributes) error {
	if a.Source == nil || !a.Source.IsTopic() {
		return fmt.Errorf("publish source must be a topic resource")
	}
	if a.Sink != nil && !a.Sink.IsEmpty() {
		return fmt.Errorf("publish must not carry a sink")
	}
	return nil
}

func validateNotification(a *UAttributes) error {
	if a.Source == nil || !a.Source.IsTopic() {
		return fmt.Errorf("notification source must be a topic resource")
	}
	if a.Sink == nil || !a.Sink.IsRPCResponse() {
		return fmt.Errorf("notification sink must be a response slot")
	}
	return nil
}

func validateRequest(a *UAttributes) error {
	if a.Source == nil || !a.Source.IsRPCResponse() {
		return fmt.Errorf("request source must be a response slot")
	}
	if a.Sink == nil || !a.Sink.IsRPCMethod() {
		return fmt.Errorf("request sink must be an rpc method")
	}
	if a.TTLms == 0 {
		return fmt.Errorf("request must carry a ttl")
	}
	return nil
}

func validateResponse(a *UAttributes) error {
	if a.Source == nil || !a.Source.IsRPCMethod() {
		return fmt.Errorf("response source must be an rpc method")
	}
	if a.Sink == nil || !a.Sink.IsRPCResponse() {
		return fmt.Errorf("response sink must be a response slot")
	}
	if a.ReqID.IsZero() {
		return fmt.Errorf("response must carry the request id")
	}
	return nil
}
