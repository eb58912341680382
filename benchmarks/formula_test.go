package benchmarks

import (
	"fmt"
	"testing"

	"github.com/randalmurphal/valueflow/pkg/valueflow"
)

var benchAvailable = []string{
	"net_sales_2000", "net_sales_2001", "change_in_net_sales",
	"gross_margin", "operating_expenses", "revenue",
}

func benchBindings() map[string]valueflow.ValueObject {
	bindings := make(map[string]valueflow.ValueObject, len(benchAvailable))
	for i, name := range benchAvailable {
		bindings[name] = valueflow.NewValue(float64(1000+i*37), valueflow.Millions,
			valueflow.SourceExtracted, name)
	}
	return bindings
}

// BenchmarkValidate_Simple measures validation of a two-operand formula.
func BenchmarkValidate_Simple(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = valueflow.Validate("net_sales_2001 - net_sales_2000", benchAvailable)
	}
}

// BenchmarkValidate_Nested measures validation of nested calls.
func BenchmarkValidate_Nested(b *testing.B) {
	const formula = "to_percentage(abs(net_sales_2001 - net_sales_2000) / max(revenue, gross_margin))"
	for i := 0; i < b.N; i++ {
		_, _ = valueflow.Validate(formula, benchAvailable)
	}
}

// BenchmarkExecute_Simple measures execution of a pre-validated formula.
func BenchmarkExecute_Simple(b *testing.B) {
	f, err := valueflow.Validate("net_sales_2001 - net_sales_2000", benchAvailable)
	if err != nil {
		b.Fatal(err)
	}
	bindings := benchBindings()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = valueflow.Execute(f, bindings)
	}
}

// BenchmarkExecute_Nested measures execution of nested calls.
func BenchmarkExecute_Nested(b *testing.B) {
	const formula = "to_percentage(abs(net_sales_2001 - net_sales_2000) / max(revenue, gross_margin))"
	f, err := valueflow.Validate(formula, benchAvailable)
	if err != nil {
		b.Fatal(err)
	}
	bindings := benchBindings()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = valueflow.Execute(f, bindings)
	}
}

// BenchmarkValidateAndExecute measures the full per-turn cost.
func BenchmarkValidateAndExecute(b *testing.B) {
	bindings := benchBindings()
	for i := 0; i < b.N; i++ {
		f, err := valueflow.Validate("net_sales_2001 / net_sales_2000", benchAvailable)
		if err != nil {
			b.Fatal(err)
		}
		_, _ = valueflow.Execute(f, bindings)
	}
}

// BenchmarkValidate_WideStore measures validation against a large store,
// where the undefined-variable check dominates.
func BenchmarkValidate_WideStore(b *testing.B) {
	available := make([]string, 1000)
	for i := range available {
		available[i] = fmt.Sprintf("metric_%04d", i)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = valueflow.Validate("metric_0001 + metric_0999", available)
	}
}
