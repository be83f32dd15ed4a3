package parser

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// RuleInfo is a rule body with its optional description.
// The description is used as the context of errors raised inside the rule.
type RuleInfo struct {
	Expr  Expression
	Descr string
}

// RuleSet maps rule names to rule bodies. Rules refer to each other by name,
// so recursive grammars need no cyclic structures.
type RuleSet map[string]RuleInfo

// Add registers a rule. Adding an existing name fails.
func (rs RuleSet) Add(name string, expr Expression, descr string) error {
	if _, ok := rs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, name)
	}

	rs[name] = RuleInfo{Expr: expr, Descr: descr}

	return nil
}

// Merge copies every rule of other into rs. Nothing is copied when a name
// exists in both sets.
func (rs RuleSet) Merge(other RuleSet) error {
	var dups []string

	for name := range other {
		if _, ok := rs[name]; ok {
			dups = append(dups, name)
		}
	}

	if len(dups) > 0 {
		sort.Strings(dups)
		return fmt.Errorf("%w: %s", ErrDuplicateRule, strings.Join(dups, ", "))
	}

	for name, info := range other {
		rs[name] = info
	}

	return nil
}

// Names returns the rule names in sorted order.
func (rs RuleSet) Names() []string {
	names := make([]string, 0, len(rs))
	for name := range rs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Validate reports references to undefined rules and invalid repeat bounds.
func (rs RuleSet) Validate() error {
	var undefined []string

	for _, name := range rs.Names() {
		err := walk(rs[name].Expr, func(e Expression) error {
			switch v := e.(type) {
			case RuleName:
				if _, ok := rs[v.Name]; !ok && !slices.Contains(undefined, v.Name) {
					undefined = append(undefined, v.Name)
				}
			case Repeat:
				if v.Min < 0 || (v.Max != Unbounded && (v.Max < 0 || v.Min > v.Max)) {
					return fmt.Errorf("%w: rule %s: %s", ErrInvalidRepeat, name, v)
				}
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	if len(undefined) > 0 {
		sort.Strings(undefined)
		return fmt.Errorf("%w: %s", ErrUndefinedRule, strings.Join(undefined, ", "))
	}

	return nil
}

// References returns the sorted names of the rules referenced by name.
func (rs RuleSet) References(name string) []string {
	info, ok := rs[name]
	if !ok {
		return nil
	}

	var refs []string

	_ = walk(info.Expr, func(e Expression) error {
		if v, ok := e.(RuleName); ok && !slices.Contains(refs, v.Name) {
			refs = append(refs, v.Name)
		}

		return nil
	})

	sort.Strings(refs)

	return refs
}

func walk(e Expression, fn func(Expression) error) error {
	if err := fn(e); err != nil {
		return err
	}

	var children []Expression

	switch v := e.(type) {
	case And:
		children = v.Exprs
	case Or:
		children = v.Exprs
	case Transf2:
		children = v.Exprs
	case Not:
		children = []Expression{v.Expr}
	case Peek:
		children = []Expression{v.Expr}
	case Repeat:
		children = []Expression{v.Expr}
	case Named:
		children = []Expression{v.Expr}
	}

	for _, child := range children {
		if err := walk(child, fn); err != nil {
			return err
		}
	}

	return nil
}
