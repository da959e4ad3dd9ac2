package summarize

import "testing"

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"missing closing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
		{"fence with no newline", "```{}", `{}`},
		{"empty", "", ""},
	}

	for _, c := range cases {
		if got := StripCodeFence(c.in); got != c.want {
			t.Fatalf("%s: expected %q, got %q", c.name, c.want, got)
		}
	}
}

func TestStripCodeFenceKeepsNestedFences(t *testing.T) {
	in := "```json\n{\"exemplo\":\"```code```\"}\n```"
	want := `{"exemplo":"` + "```code```" + `"}`
	if got := StripCodeFence(in); got != want {
		t.Fatalf("expected nested fence kept, got %q", got)
	}
}
