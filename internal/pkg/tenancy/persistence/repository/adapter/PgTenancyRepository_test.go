package adapter

import "testing"

func TestDecodeCapabilities(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    map[string]bool
		wantErr bool
	}{
		{"object form", `{"COMMS_ACCESS": true, "AUTOMATIONS_RUN": false}`, map[string]bool{"COMMS_ACCESS": true, "AUTOMATIONS_RUN": false}, false},
		{"array form", `["COMMS_ACCESS"]`, map[string]bool{"COMMS_ACCESS": true}, false},
		{"empty object", `{}`, map[string]bool{}, false},
		{"empty array", `[]`, map[string]bool{}, false},
		{"empty column", ``, map[string]bool{}, false},
		{"garbage", `42`, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := decodeCapabilities([]byte(tc.raw))
			if tc.wantErr {
				if err == nil {
					t.Fatalf("decode(%q) = %v, want error", tc.raw, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("decode(%q): %v", tc.raw, err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("decode(%q) = %v, want %v", tc.raw, got, tc.want)
			}
			for name, granted := range tc.want {
				if got[name] != granted {
					t.Fatalf("decode(%q)[%s] = %v, want %v", tc.raw, name, got[name], granted)
				}
			}
		})
	}
}
