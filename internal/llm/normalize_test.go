package llm

import "testing"

func TestNormalizeAnswer(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Transaction ID: FT25188TN19J", "Transaction ID: FT25188TN19J"},
		{"bold label", "**Transaction ID:** FT25188TN19J", "Transaction ID: FT25188TN19J"},
		{"code span", "Transaction ID: `CE12XYZ999`", "Transaction ID: CE12XYZ999"},
		{"bullets", "- Payer Name: ABEBE\n* Transferred Amount: 100.00 ETB", "Payer Name: ABEBE\nTransferred Amount: 100.00 ETB"},
		{"whitespace", "Payer Name:\t\tABEBE   KEBEDE  \r\n\r\n\r\n\r\nStatus: Completed\n", "Payer Name: ABEBE KEBEDE\n\nStatus: Completed"},
		{"keeps zeros", "Transaction ID: FT0123", "Transaction ID: FT0123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAnswer(tt.in); got != tt.want {
				t.Errorf("NormalizeAnswer(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
