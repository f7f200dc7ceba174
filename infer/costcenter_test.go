package infer

import "testing"

func TestExtractCostCenter(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{"four digit run", "Dallas 0120", "0120", true},
		{"leading zeros stripped to four", "Branch 001200", "1200", true},
		{"bare four digits", "4500", "4500", true},
		{"longer run takes last four", "Location 123456", "3456", true},
		{"short run padded", "Suite 12", "0012", true},
		{"no digits", "Remote", "", false},
		{"empty", "", "", false},
		{"whitespace only", "   ", "", false},
		{"digits inside words", "Plano0400 office", "0400", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractCostCenter(tt.text)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ExtractCostCenter(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestExtractCostCenter_Idempotent(t *testing.T) {
	inputs := []string{"Dallas 0120", "Branch 001200", "Suite 12", "Location 123456"}
	for _, in := range inputs {
		first, ok := ExtractCostCenter(in)
		if !ok {
			t.Fatalf("expected a cost center from %q", in)
		}
		second, ok := ExtractCostCenter(first)
		if !ok || second != first {
			t.Errorf("ExtractCostCenter not idempotent on %q: %q -> %q", in, first, second)
		}
	}
}

func TestCostCenterFromSubject(t *testing.T) {
	code, source := CostCenterFromSubject("Dallas 0120", "Lending 0400")
	if code != "0120" || source != "office location" {
		t.Errorf("got (%q, %q), want office location preferred", code, source)
	}

	code, source = CostCenterFromSubject("Remote", "Lending 0400")
	if code != "0400" || source != "department" {
		t.Errorf("got (%q, %q), want department fallback", code, source)
	}

	code, source = CostCenterFromSubject("Remote", "")
	if code != "" || source != "" {
		t.Errorf("got (%q, %q), want empty", code, source)
	}
}
