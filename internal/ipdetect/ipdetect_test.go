package ipdetect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPDetector(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		want    string
		wantErr bool
	}{
		{"plain address", "203.0.113.7", http.StatusOK, "203.0.113.7", false},
		{"address with newline", "203.0.113.7\n", http.StatusOK, "203.0.113.7", false},
		{"dyndns style", "Current IP Address: 203.0.113.7", http.StatusOK, "203.0.113.7", false},
		{"html wrapped", "<html><body>203.0.113.7</body></html>", http.StatusOK, "203.0.113.7", false},
		{"skips invalid octets", "999.999.999.999 then 203.0.113.7", http.StatusOK, "203.0.113.7", false},
		{"no address", "hello there", http.StatusOK, "", true},
		{"server error", "203.0.113.7", http.StatusInternalServerError, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			d := &HTTPDetector{Client: srv.Client(), URL: srv.URL}
			ip, err := d.Detect(context.Background())
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", ip)
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect failed: %v", err)
			}
			if ip.String() != tt.want {
				t.Errorf("ip = %s, want %s", ip, tt.want)
			}
		})
	}
}

func TestParseAddress(t *testing.T) {
	if _, err := parseAddress(""); err == nil {
		t.Error("empty body must fail")
	}
	ip, err := parseAddress("a 198.51.100.4 b 203.0.113.7")
	if err != nil {
		t.Fatalf("parseAddress failed: %v", err)
	}
	if ip.String() != "198.51.100.4" {
		t.Errorf("ip = %s, want the first address", ip)
	}
}

func TestFakeAddress(t *testing.T) {
	if FakeAddress == nil || FakeAddress.To4() == nil {
		t.Fatal("fake address must be a valid IPv4 address")
	}
}
