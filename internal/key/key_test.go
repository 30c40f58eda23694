package key

import (
	"testing"

	"github.com/ehrlich-b/go-uptransport/uproto"
)

func TestToKey(t *testing.T) {
	authority := "192.168.1.100"
	tests := []struct {
		name string
		src  string
		sink string
		want string
	}{
		{
			name: "local source no sink",
			src:  "/10AB/3/80CD",
			want: "up/192.168.1.100/10AB/3/80CD/{}/{}/{}/{}",
		},
		{
			name: "remote source no sink",
			src:  "//192.168.1.100/10AB/3/80CD",
			want: "up/192.168.1.100/10AB/3/80CD/{}/{}/{}/{}",
		},
		{
			name: "source and sink",
			src:  "//192.168.1.100/10AB/3/80CD",
			sink: "//192.168.1.101/20EF/4/0",
			want: "up/192.168.1.100/10AB/3/80CD/192.168.1.101/20EF/4/0",
		},
		{
			name: "wildcard source",
			src:  "//*/FFFF/FF/FFFF",
			sink: "//192.168.1.101/20EF/4/0",
			want: "up/*/*/*/*/192.168.1.101/20EF/4/0",
		},
		{
			name: "two hosts",
			src:  "//my-host1/10AB/3/0",
			sink: "//my-host2/20EF/4/B",
			want: "up/my-host1/10AB/3/0/my-host2/20EF/4/B",
		},
		{
			name: "wildcard source named sink",
			src:  "//*/FFFF/FF/FFFF",
			sink: "//my-host2/20EF/4/B",
			want: "up/*/*/*/*/my-host2/20EF/4/B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := uproto.MustParseURI(tt.src)
			var sink *uproto.UUri
			if tt.sink != "" {
				sink = uproto.MustParseURI(tt.sink)
			}
			got := ToKey(authority, src, sink)
			if got != tt.want {
				t.Errorf("ToKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestToKeyDeterministic(t *testing.T) {
	src := uproto.MustParseURI("//host/10AB/3/80CD")
	sink := uproto.MustParseURI("//peer/20EF/4/0")
	first := ToKey("host", src, sink)
	for i := 0; i < 10; i++ {
		if got := ToKey("host", src, sink); got != first {
			t.Fatalf("ToKey() not deterministic: %q vs %q", got, first)
		}
	}
}

func TestSegmentHexUppercaseNoPadding(t *testing.T) {
	uri := &uproto.UUri{AuthorityName: "host", UeID: 0xB, UeVersionMajor: 0x1, ResourceID: 0x80CD}
	if got, want := Segment("", uri), "host/B/1/80CD"; got != want {
		t.Errorf("Segment() = %q, want %q", got, want)
	}
}

func TestSegmentInheritsLocalAuthority(t *testing.T) {
	uri := &uproto.UUri{UeID: 1, UeVersionMajor: 2, ResourceID: 3}
	if got, want := Segment("local-host", uri), "local-host/1/2/3"; got != want {
		t.Errorf("Segment() = %q, want %q", got, want)
	}
}

func TestSegmentFullEntityWildcard(t *testing.T) {
	uri := &uproto.UUri{
		AuthorityName:  "host",
		UeID:           uproto.WildcardEntityID,
		UeVersionMajor: 1,
		ResourceID:     0x8000,
	}
	if got, want := Segment("", uri), "host/*/1/8000"; got != want {
		t.Errorf("Segment() = %q, want %q", got, want)
	}
}
