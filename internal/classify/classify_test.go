package classify

import (
	"testing"

	"github.com/ehrlich-b/go-uptransport/uproto"
)

func uriWithResource(rid uint32) *uproto.UUri {
	return &uproto.UUri{AuthorityName: "host", UeID: 1, UeVersionMajor: 1, ResourceID: rid}
}

func TestClassifyTable(t *testing.T) {
	tests := []struct {
		name string
		src  uint32
		sink int64 // -1 means no sink
		want MessageFlag
	}{
		{"topic no sink", 0x80CD, -1, FlagPublish},
		{"wildcard no sink", 0xFFFF, -1, FlagPublish},
		{"topic to response slot", 0x80CD, 0, FlagNotification},
		{"topic to wildcard", 0x80CD, 0xFFFF, FlagNotification},
		{"wildcard to response slot", 0xFFFF, 0, FlagNotification | FlagResponse},
		{"wildcard to wildcard", 0xFFFF, 0xFFFF, FlagNotification | FlagRequest | FlagResponse},
		{"response slot to method", 0, 0x0003, FlagRequest},
		{"response slot to wildcard", 0, 0xFFFF, FlagRequest},
		{"wildcard to method", 0xFFFF, 0x000B, FlagRequest},
		{"method to response slot", 0x0003, 0, FlagResponse},
		{"method to wildcard", 0x000B, 0xFFFF, FlagResponse},
		{"topic range low edge", 0x8000, -1, FlagPublish},
		{"topic range high edge", 0xFFFE, -1, FlagPublish},
		{"rpc range high edge", 0, 0x7FFF, FlagRequest},
		{"response slot no sink", 0, -1, 0},
		{"method no sink", 0x0003, -1, 0},
		{"topic to topic", 0x80CD, 0x8001, 0},
		{"response slot to response slot", 0, 0, 0},
		{"method to method", 0x0003, 0x000B, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := uriWithResource(tt.src)
			var sink *uproto.UUri
			if tt.sink >= 0 {
				sink = uriWithResource(uint32(tt.sink))
			}
			if got := Classify(src, sink); got != tt.want {
				t.Errorf("Classify(%#x, %v) = %v, want %v", tt.src, tt.sink, got, tt.want)
			}
		})
	}
}

func TestClassifyPure(t *testing.T) {
	src := uriWithResource(0xFFFF)
	sink := uriWithResource(0)
	first := Classify(src, sink)
	for i := 0; i < 5; i++ {
		if got := Classify(src, sink); got != first {
			t.Fatalf("Classify() not stable: %v vs %v", got, first)
		}
	}
}

func TestMessageFlagString(t *testing.T) {
	tests := []struct {
		flag MessageFlag
		want string
	}{
		{FlagPublish, "PUBLISH"},
		{FlagNotification | FlagResponse, "NOTIFICATION|RESPONSE"},
		{FlagNotification | FlagRequest | FlagResponse, "NOTIFICATION|REQUEST|RESPONSE"},
		{0, "NONE"},
	}
	for _, tt := range tests {
		if got := tt.flag.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
