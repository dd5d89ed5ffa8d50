// Package argparse binds keyword-style command arguments to the fields of a
// struct. A Parser is declared once per command as a table of keywords and
// accessor functions, then applied to each invocation.
package argparse

import "sort"

type slotKind int

const (
	scalarSlot slotKind = iota
	flagSlot
	listSlot
	groupsSlot
)

type slot[T any] struct {
	kind   slotKind
	scalar func(*T) *string
	flag   func(*T) *bool
	list   func(*T) *[]string
	groups func(*T) *[][]string
}

// Parser is a keyword schema for argument struct T.
type Parser[T any] struct {
	slots map[string]slot[T]
}

// New creates an empty schema.
func New[T any]() *Parser[T] {
	return &Parser[T]{slots: make(map[string]slot[T])}
}

// String binds a single-value keyword.
func (p *Parser[T]) String(keyword string, field func(*T) *string) *Parser[T] {
	p.slots[keyword] = slot[T]{kind: scalarSlot, scalar: field}
	return p
}

// Flag binds a keyword without values.
func (p *Parser[T]) Flag(keyword string, field func(*T) *bool) *Parser[T] {
	p.slots[keyword] = slot[T]{kind: flagSlot, flag: field}
	return p
}

// List binds a keyword collecting every following value.
func (p *Parser[T]) List(keyword string, field func(*T) *[]string) *Parser[T] {
	p.slots[keyword] = slot[T]{kind: listSlot, list: field}
	return p
}

// Groups binds a repeatable keyword. Each occurrence starts a new group
// holding the values that follow it.
func (p *Parser[T]) Groups(keyword string, field func(*T) *[][]string) *Parser[T] {
	p.slots[keyword] = slot[T]{kind: groupsSlot, groups: field}
	return p
}

// Has reports whether keyword is bound.
func (p *Parser[T]) Has(keyword string) bool {
	_, ok := p.slots[keyword]
	return ok
}

// Result describes what an invocation supplied.
type Result struct {
	// Unknown holds tokens not consumed by any keyword, in order.
	Unknown []string
	// Keywords holds every keyword occurrence, in order.
	Keywords []string
	// MissingValue holds single-value keywords given without a value.
	MissingValue []string

	singles []string
}

// Seen reports whether keyword was supplied.
func (r Result) Seen(keyword string) bool {
	for _, kw := range r.Keywords {
		if kw == keyword {
			return true
		}
	}
	return false
}

// DuplicateKeyword returns a single-value keyword supplied more than once.
func (r Result) DuplicateKeyword() (string, bool) {
	sorted := append([]string(nil), r.singles...)
	sort.Strings(sorted)
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return sorted[i], true
		}
	}
	return "", false
}

// Parse matches args against the schema and stores values into dst.
func (p *Parser[T]) Parse(args []string, dst *T) Result {
	var (
		res     Result
		current *slot[T]
		pending string
	)
	finishScalar := func() {
		if pending != "" {
			res.MissingValue = append(res.MissingValue, pending)
			pending = ""
		}
	}

	for _, arg := range args {
		if s, ok := p.slots[arg]; ok {
			finishScalar()
			res.Keywords = append(res.Keywords, arg)
			current = nil
			switch s.kind {
			case flagSlot:
				*s.flag(dst) = true
				res.singles = append(res.singles, arg)
			case scalarSlot:
				pending = arg
				res.singles = append(res.singles, arg)
				current = &s
			case listSlot:
				list := s.list(dst)
				if *list == nil {
					*list = []string{}
				}
				current = &s
			case groupsSlot:
				g := s.groups(dst)
				*g = append(*g, []string{})
				current = &s
			}
			continue
		}

		if current == nil {
			res.Unknown = append(res.Unknown, arg)
			continue
		}
		switch current.kind {
		case scalarSlot:
			*current.scalar(dst) = arg
			pending = ""
			current = nil
		case listSlot:
			list := current.list(dst)
			*list = append(*list, arg)
		case groupsSlot:
			g := *current.groups(dst)
			g[len(g)-1] = append(g[len(g)-1], arg)
		}
	}
	finishScalar()
	return res
}
