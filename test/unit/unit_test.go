//go:build !integration
// +build !integration

package unit

import (
	"testing"

	uptransport "github.com/ehrlich-b/go-uptransport"
	"github.com/ehrlich-b/go-uptransport/overlay"
	"github.com/ehrlich-b/go-uptransport/uproto"
)

// These tests exercise the public surface without a live overlay pair.

func TestAttachmentVersionConstant(t *testing.T) {
	if uptransport.AttachmentVersion != 0x01 {
		t.Errorf("AttachmentVersion = %#x, want 0x01", uptransport.AttachmentVersion)
	}
}

func TestListenerInterface(t *testing.T) {
	var l uproto.Listener = uproto.ListenerFunc(func(*uproto.UMessage) {})
	if l == nil {
		t.Fatal("ListenerFunc returned nil")
	}

	// Listener identity is stable: the same value equals itself and two
	// separately created ListenerFunc values are distinct registrations.
	same := l
	if same != l {
		t.Error("listener not equal to itself")
	}
	other := uproto.ListenerFunc(func(*uproto.UMessage) {})
	if l == other {
		t.Error("distinct ListenerFunc values should not be equal")
	}
}

func TestWildcardSentinels(t *testing.T) {
	if uproto.WildcardEntityType != 0xFFFF {
		t.Errorf("WildcardEntityType = %#x", uproto.WildcardEntityType)
	}
	if uproto.WildcardVersion != 0xFF {
		t.Errorf("WildcardVersion = %#x", uproto.WildcardVersion)
	}
	if uproto.WildcardResourceID != 0xFFFF {
		t.Errorf("WildcardResourceID = %#x", uproto.WildcardResourceID)
	}
	if uproto.WildcardAuthority != "*" {
		t.Errorf("WildcardAuthority = %q", uproto.WildcardAuthority)
	}
}

func TestOverlaySessionInterface(t *testing.T) {
	cfg := overlay.DefaultConfig()
	cfg.Namespace = t.Name()
	s, err := overlay.Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var _ overlay.Session = s
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
