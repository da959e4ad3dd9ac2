package summarize

import (
	"encoding/json"
	"strings"

	"github.com/extraia-ai/extract-service/internal/apierr"
)

// StructuredFields is the fixed output schema for structured-fields
// mode. The key names follow the Brazilian public-exam and job-posting
// domain the service extracts from. Single-valued fields are nullable;
// multi-valued fields are arrays and never null.
type StructuredFields struct {
	NomeConcursoOuVaga *string  `json:"nomeConcursoOuVaga"`
	OrgaoResponsavel   *string  `json:"orgaoResponsavel"`
	Cargos             []string `json:"cargos"`
	Requisitos         []string `json:"requisitos"`
	Salario            *string  `json:"salario"`
	InicioInscricoes   *string  `json:"inicioInscricoes"`
	FimInscricoes      *string  `json:"fimInscricoes"`
	TaxaInscricao      *string  `json:"taxaInscricao"`
	DataProva          *string  `json:"dataProva"`
}

// ParseStructured turns raw model output into StructuredFields. Fence
// markers are stripped first; anything that still fails to parse is an
// InvalidModelOutput error carrying the raw output for debugging.
// Partial objects are never coerced silently: absent nullable fields
// stay null, absent arrays become empty.
func ParseStructured(raw string) (*StructuredFields, error) {
	clean := StripCodeFence(raw)

	// json.Unmarshal accepts a top-level null or array into a struct
	// without complaint; only an object can satisfy the schema.
	if !strings.HasPrefix(strings.TrimSpace(clean), "{") {
		return nil, apierr.New(apierr.KindInvalidModelOutput,
			"summarization service returned a non-object response").
			WithDetails("raw output: " + raw)
	}

	var fields StructuredFields
	if err := json.Unmarshal([]byte(clean), &fields); err != nil {
		return nil, apierr.New(apierr.KindInvalidModelOutput,
			"summarization service returned malformed JSON").
			WithDetails(err.Error() + "; raw output: " + raw)
	}

	if fields.Cargos == nil {
		fields.Cargos = []string{}
	}
	if fields.Requisitos == nil {
		fields.Requisitos = []string{}
	}
	return &fields, nil
}
