package forgeterm

import (
	"fmt"
	"strings"
)

// AliasTable maps a trigger token to replacement text. Expansion is a single
// substitution pass; the replacement is never expanded again.
type AliasTable struct {
	values map[string]string
	order  []string
}

// NewAliasTable returns a table preloaded with the default aliases.
func NewAliasTable() *AliasTable {
	t := &AliasTable{values: make(map[string]string)}
	t.Set("ll", "ls -la")
	t.Set("la", "ls -a")
	t.Set("..", "cd ..")
	return t
}

// Set defines or redefines an alias. Redefinition keeps the original position.
func (t *AliasTable) Set(name, value string) {
	if _, exists := t.values[name]; !exists {
		t.order = append(t.order, name)
	}
	t.values[name] = value
}

// Get returns the expansion text for name.
func (t *AliasTable) Get(name string) (string, bool) {
	v, ok := t.values[name]
	return v, ok
}

// Expand replaces tokens[0] with its alias expansion, if any, and appends the
// remaining original tokens.
func (t *AliasTable) Expand(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}
	value, ok := t.values[tokens[0]]
	if !ok {
		return tokens
	}

	expanded := strings.Fields(value)
	out := make([]string, 0, len(expanded)+len(tokens)-1)
	out = append(out, expanded...)
	return append(out, tokens[1:]...)
}

// Format renders a single alias the way the alias builtin prints it.
func (t *AliasTable) Format(name string) string {
	return fmt.Sprintf("alias %s='%s'", name, t.values[name])
}

// List returns one formatted line per alias in insertion order.
func (t *AliasTable) List() []string {
	lines := make([]string, 0, len(t.order))
	for _, name := range t.order {
		lines = append(lines, t.Format(name))
	}
	return lines
}

// Len returns the number of aliases.
func (t *AliasTable) Len() int {
	return len(t.order)
}

// parseAliasDefinition splits "name=value" and strips one pair of
// surrounding quotes from value.
func parseAliasDefinition(def string) (string, string, bool) {
	idx := strings.Index(def, "=")
	if idx <= 0 {
		return "", "", false
	}
	name := strings.TrimSpace(def[:idx])
	value := strings.TrimSpace(def[idx+1:])
	if len(value) >= 2 {
		first, last := value[0], value[len(value)-1]
		if (first == '\'' || first == '"') && first == last {
			value = value[1 : len(value)-1]
		}
	}
	return name, value, name != ""
}
