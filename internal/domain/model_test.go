package domain

import "testing"

func TestHealthyClassificationIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		name    string
		disease string
		want    bool
	}{
		{"exact", "Healthy", true},
		{"lowercase", "healthy", true},
		{"substring", "Mostly Healthy Leaf", true},
		{"uppercase substring", "LEAF IS HEALTHY", true},
		{"diseased", "Leaf Blight", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Prediction{DiseaseName: tt.disease}
			if got := p.Healthy(); got != tt.want {
				t.Errorf("Healthy(%q) = %v, want %v", tt.disease, got, tt.want)
			}
		})
	}
}

func TestNewEncodedImageInvariant(t *testing.T) {
	img := NewEncodedImage("image/png", "aGVsbG8=")

	if img.DisplayURI != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("DisplayURI = %q", img.DisplayURI)
	}
	if got := PayloadOf(img.DisplayURI); got != img.TransportPayload {
		t.Errorf("PayloadOf(DisplayURI) = %q, want %q", got, img.TransportPayload)
	}
}

func TestPayloadOfWithoutComma(t *testing.T) {
	if got := PayloadOf("aGVsbG8="); got != "aGVsbG8=" {
		t.Errorf("PayloadOf = %q", got)
	}
}

func TestParseRouteFallsBackToDiagnose(t *testing.T) {
	tests := []struct {
		in   string
		want Route
	}{
		{"chat", RouteChat},
		{"history", RouteHistory},
		{"diagnose", RouteDiagnose},
		{"", RouteDiagnose},
		{"garbage", RouteDiagnose},
	}
	for _, tt := range tests {
		if got := ParseRoute(tt.in); got != tt.want {
			t.Errorf("ParseRoute(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
