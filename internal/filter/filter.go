// Package filter implements the version-name selection grammar and the glob
// restriction applied to files within a version tree.
//
// The name grammar: semicolon-separated terms, where a name matches the
// expression when it matches any term; each term is a whitespace-separated
// list of factors that must all match. A factor starting with '^' matches a
// prefix, one ending with '$' matches a suffix, anything else matches a
// substring. Matching is case-insensitive throughout.
package filter

import "strings"

// kind tags the expression tree nodes.
type kind int

const (
	kindConst kind = iota
	kindNot
	kindAnd
	kindOr
	kindStartsWith
	kindEndsWith
	kindContains
)

// Expr is one node of a compiled name filter. The zero value matches nothing;
// build expressions with the constructors or ParseIncludeExclude.
type Expr struct {
	kind  kind
	value bool
	text  string
	left  *Expr
	right *Expr
}

// Const builds an expression that always yields value.
func Const(value bool) Expr {
	return Expr{kind: kindConst, value: value}
}

// Not negates an expression.
func Not(expr Expr) Expr {
	return Expr{kind: kindNot, left: &expr}
}

// And matches when both operands match.
func And(left, right Expr) Expr {
	return Expr{kind: kindAnd, left: &left, right: &right}
}

// Or matches when either operand matches.
func Or(left, right Expr) Expr {
	return Expr{kind: kindOr, left: &left, right: &right}
}

// StartsWith matches names beginning with the given text, ignoring case.
func StartsWith(text string) Expr {
	return Expr{kind: kindStartsWith, text: strings.ToLower(text)}
}

// EndsWith matches names ending with the given text, ignoring case.
func EndsWith(text string) Expr {
	return Expr{kind: kindEndsWith, text: strings.ToLower(text)}
}

// Contains matches names containing the given text, ignoring case.
func Contains(text string) Expr {
	return Expr{kind: kindContains, text: strings.ToLower(text)}
}

// Match reports whether name satisfies the expression. Matching is
// case-insensitive.
func (e Expr) Match(name string) bool {
	return e.eval(strings.ToLower(name))
}

// eval is the single recursive evaluator over the tagged tree. The name has
// already been lowercased.
func (e Expr) eval(name string) bool {
	switch e.kind {
	case kindConst:
		return e.value
	case kindNot:
		return !e.left.eval(name)
	case kindAnd:
		return e.left.eval(name) && e.right.eval(name)
	case kindOr:
		return e.left.eval(name) || e.right.eval(name)
	case kindStartsWith:
		return strings.HasPrefix(name, e.text)
	case kindEndsWith:
		return strings.HasSuffix(name, e.text)
	case kindContains:
		return strings.Contains(name, e.text)
	default:
		return false
	}
}

// ParseIncludeExclude compiles the include/exclude pair into one expression:
// include AND NOT exclude. An empty include accepts every name; an empty
// exclude rejects none.
func ParseIncludeExclude(include, exclude string) Expr {
	inc := Const(true)
	if strings.TrimSpace(include) != "" {
		inc = parse(include)
	}

	exc := Const(false)
	if strings.TrimSpace(exclude) != "" {
		exc = parse(exclude)
	}

	return And(inc, Not(exc))
}

// parse compiles a non-empty grammar expression: OR of terms, AND of factors.
func parse(expr string) Expr {
	result := Const(false)
	compiled := false

	for _, term := range strings.Split(expr, ";") {
		factors := strings.Fields(term)
		if len(factors) == 0 {
			continue
		}

		termExpr := compileFactor(factors[0])
		for _, factor := range factors[1:] {
			termExpr = And(termExpr, compileFactor(factor))
		}

		if !compiled {
			result = termExpr
			compiled = true
		} else {
			result = Or(result, termExpr)
		}
	}

	return result
}

// compileFactor builds the leaf for one factor. The prefix marker wins when
// both markers are present.
func compileFactor(factor string) Expr {
	switch {
	case strings.HasPrefix(factor, "^"):
		return StartsWith(strings.TrimPrefix(factor, "^"))
	case strings.HasSuffix(factor, "$"):
		return EndsWith(strings.TrimSuffix(factor, "$"))
	default:
		return Contains(factor)
	}
}
