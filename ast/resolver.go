package ast

// FuncResolver supplies the text of template functions such as $(:endl).
type FuncResolver interface {
	Resolve(name string) (string, bool)
}

// FuncMap resolves functions from a fixed table.
type FuncMap map[string]string

func (m FuncMap) Resolve(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// ResolverFunc adapts a function to FuncResolver.
type ResolverFunc func(name string) (string, bool)

func (f ResolverFunc) Resolve(name string) (string, bool) {
	return f(name)
}

// Builtins are consulted after the caller's resolver.
var Builtins = FuncMap{
	"endl":  "\n",
	"none":  "",
	"space": " ",
	"tab":   "\t",
}

func resolve(fr FuncResolver, name string) (string, bool) {
	if fr != nil {
		if v, ok := fr.Resolve(name); ok {
			return v, true
		}
	}

	return Builtins.Resolve(name)
}
