package utils

import (
	"testing"
)

type payload struct {
	CompanyID string    `json:"company_id"`
	Years     int       `json:"projection_years"`
	Revenues  []float64 `json:"revenues"`
	TaxRate   *float64  `json:"tax_rate"`
}

func TestDecodeLenient(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"strict json", `{"company_id":"acme","projection_years":3,"revenues":[1,2,3],"tax_rate":0.34}`},
		{"hjson", `
			# analyst draft
			company_id: acme
			projection_years: 3
			revenues: [1, 2, 3]
			tax_rate: 0.34
		`},
		{"trailing comma", `{"company_id":"acme","projection_years":3,"revenues":[1,2,3,],"tax_rate":0.34,}`},
		{"unclosed", `{"company_id":"acme","projection_years":3,"revenues":[1,2,3],"tax_rate":0.34`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			if err := DecodeLenient([]byte(tt.input), &p); err != nil {
				t.Fatalf("DecodeLenient failed: %v", err)
			}
			if p.CompanyID != "acme" || p.Years != 3 || len(p.Revenues) != 3 {
				t.Errorf("decoded %+v", p)
			}
			if p.TaxRate == nil || *p.TaxRate != 0.34 {
				t.Errorf("tax_rate = %v", p.TaxRate)
			}
		})
	}
}

func TestDecodeLenient_WrongShape(t *testing.T) {
	var p payload
	if err := DecodeLenient([]byte(`{"projection_years":"three"}`), &p); err == nil {
		t.Error("expected type error")
	}
}

func TestParseHJSON(t *testing.T) {
	out, err := ParseHJSON([]byte("a: 1\nb: text"))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":1,"b":"text"}` {
		t.Errorf("ParseHJSON = %s", out)
	}
}
