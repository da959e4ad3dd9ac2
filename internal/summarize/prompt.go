package summarize

import "fmt"

const structuredPrompt = `You are an information extraction engine for Brazilian public-exam notices and job postings.
Read the document below and respond with ONLY a JSON object using exactly these keys:

{
  "nomeConcursoOuVaga": string or null,
  "orgaoResponsavel": string or null,
  "cargos": array of strings,
  "requisitos": array of strings,
  "salario": string or null,
  "inicioInscricoes": string or null,
  "fimInscricoes": string or null,
  "taxaInscricao": string or null,
  "dataProva": string or null
}

Rules:
- Use null for any single-valued field the document does not state.
- Use an empty array for any multi-valued field with no entries.
- Do not invent information and do not add keys, prose, or code fences.

Document:
%s`

const narrativePrompt = `Summarize the document below as well-formatted markdown prose, organized by the topics you detect in it.

Rules:
- Use headings only for topics that have real content; never emit an empty heading.
- Omit any topic with nothing to summarize; never write a placeholder such as "no information available".
- Keep the summary faithful to the document; do not invent information.

Document:
%s`

// BuildPrompt renders the single prompt for a mode. Exactly one prompt
// exists per mode.
func BuildPrompt(mode Mode, text string) (string, error) {
	switch mode {
	case ModeStructured:
		return fmt.Sprintf(structuredPrompt, text), nil
	case ModeNarrative:
		return fmt.Sprintf(narrativePrompt, text), nil
	default:
		return "", fmt.Errorf("unknown summarization mode %q", mode)
	}
}
