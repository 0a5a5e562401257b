package tools

import (
	"context"
	"encoding/json"
	"testing"
)

func calcResult(t *testing.T, expression string) float64 {
	t.Helper()
	c := NewCalculator()
	input, _ := json.Marshal(map[string]string{"expression": expression})
	output, err := c.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute(%q) failed: %v", expression, err)
	}
	var out struct {
		Result float64 `json:"result"`
	}
	if err := json.Unmarshal(output, &out); err != nil {
		t.Fatalf("decode output: %v", err)
	}
	return out.Result
}

func TestCalculator(t *testing.T) {
	tests := []struct {
		expression string
		want       float64
	}{
		{"2 + 3", 5},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 4", 2.5},
		{"10 % 3", 1},
		{"-5 + 3", -2},
		{"1.5 * 2", 3},
	}

	for _, tt := range tests {
		if got := calcResult(t, tt.expression); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.expression, got, tt.want)
		}
	}
}

func TestCalculatorErrors(t *testing.T) {
	c := NewCalculator()

	expressions := []string{
		"1 / 0",
		"1 % 0",
		"os.Exit(1)",
		"x + 1",
		`"a" + "b"`,
		"1 <<",
	}
	for _, expr := range expressions {
		input, _ := json.Marshal(map[string]string{"expression": expr})
		if _, err := c.Execute(context.Background(), input); err == nil {
			t.Errorf("Execute(%q) should fail", expr)
		}
	}

	if _, err := c.Execute(context.Background(), json.RawMessage(`{"expression": ""}`)); err == nil {
		t.Error("empty expression should fail")
	}
	if _, err := c.Execute(context.Background(), json.RawMessage(`not json`)); err == nil {
		t.Error("invalid json should fail")
	}
}
