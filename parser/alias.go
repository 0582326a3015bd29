package parser

// AliasFunc resolves an alias body for a command-name token, or reports ok
// == false if name is not an alias. Supplied by the state package (an
// external collaborator to the parser, per spec.md §4.1).
type AliasFunc func(name string) (body string, ok bool)

// aliasExpansion tracks one in-flight alias splice so recursive expansion
// can be bounded to one expansion per textual occurrence (spec.md §4.1
// "Aliases"): the name stays "active" only until the buffer position passes
// the end of the spliced text.
type aliasExpansion struct {
	name  string
	until int // buffer position past which this name is expandable again
}

func (p *Parser) aliasActive(name string) bool {
	for _, a := range p.activeAliases {
		if a.name == name && p.buf.pos < a.until {
			return true
		}
	}
	return false
}

// maybeExpandAlias looks up name via the alias callback and, if found and
// not already active at this position, splices its body into the input
// buffer so parsing resumes inside it.
func (p *Parser) maybeExpandAlias(name string) bool {
	if p.Alias == nil || p.aliasActive(name) {
		return false
	}
	body, ok := p.Alias(name)
	if !ok || body == "" {
		return false
	}
	p.buf.splice(body)
	p.activeAliases = append(p.activeAliases, aliasExpansion{
		name:  name,
		until: p.buf.pos + len(body),
	})
	return true
}

// splice inserts text at the current read position, to be consumed next.
func (b *buffer) splice(text string) {
	b.fill(0)
	rest := append([]byte(nil), b.data[b.pos:]...)
	b.data = append(b.data[:b.pos], append([]byte(text), rest...)...)
}
