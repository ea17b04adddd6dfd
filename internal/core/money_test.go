package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"0.5", 50, false},
		{"7", 700, false},
		{"12.345", 1234, false}, // rounds down
		{"12.346", 1235, false}, // rounds up
		{"-5", -500, false},
		{"-0.01", -1, false},
		{"+3", 300, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"12.3a", 0, true},
		{"0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDecimalToCents(%q) = %d, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     string
	}{
		{"euro comma separator", 1234, "EUR", "€12,34"},
		{"dollar dot separator", 1234, "USD", "$12.34"},
		{"pound", 99, "GBP", "£0.99"},
		{"negative euro", -1050, "EUR", "-€10,50"},
		{"yen no minor unit", 1500, "JPY", "¥1500"},
		{"unknown code falls back", 100, "SEK", "SEK 1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Money{Cents: tt.cents}.Format(tt.currency)
			if got != tt.want {
				t.Errorf("Format(%q) = %q, want %q", tt.currency, got, tt.want)
			}
		})
	}
}
