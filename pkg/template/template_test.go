package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tramio/tramio/pkg/template"
)

func TestSubstitute(t *testing.T) {
	t.Parallel()

	primary := map[string]string{"proveedor": "ACME", "monto": "100"}
	fallback := map[string]string{"monto": "999", "moneda": "MXN"}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text untouched", "sin tokens", "sin tokens"},
		{"single token", "Compra {{proveedor}}", "Compra ACME"},
		{"first source wins", "{{monto}}", "100"},
		{"fallback source", "{{moneda}}", "MXN"},
		{"unresolved token stays literal", "ref {{folio}}", "ref {{folio}}"},
		{"whitespace inside braces", "{{ proveedor }}", "ACME"},
		{"mixed resolved and unresolved", "{{proveedor}}-{{folio}}", "ACME-{{folio}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, template.Substitute(tt.input, primary, fallback))
		})
	}
}

func TestTokens(t *testing.T) {
	t.Parallel()

	keys := template.Tokens("{{a}} y {{b}} y {{ a }}")
	assert.Equal(t, []string{"a", "b"}, keys)

	assert.Empty(t, template.Tokens("sin tokens"))
}

func TestResolveName(t *testing.T) {
	t.Parallel()

	fields := map[string]string{
		"proveedor":   "ACME",
		"Monto Total": "1500",
	}

	name, ok := template.ResolveName("Compra {{proveedor}} por {{monto_total}}", fields)
	require.True(t, ok)
	assert.Equal(t, "Compra ACME por 1500", name)
}

func TestResolveNameAllOrNothing(t *testing.T) {
	t.Parallel()

	fields := map[string]string{"proveedor": "ACME"}

	_, ok := template.ResolveName("Compra {{proveedor}} por {{monto}}", fields)
	assert.False(t, ok)
}

func TestNormalizeFieldName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"Monto Total", "monto_total"},
		{"  Proveedor  ", "proveedor"},
		{"Año-Fiscal (2026)", "aofiscal_2026"},
		{"ya_normalizado", "ya_normalizado"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, template.NormalizeFieldName(tt.input))
	}
}
