package validate

import (
	"strings"

	"github.com/cilforge/cilmeta/errors"
	"github.com/cilforge/cilmeta/loader"
)

var ownedValidators = []validator[*loader.Assembly]{
	{name: "inheritance", fatal: true, enabled: func(c Config) bool { return c.Semantics }, run: checkInheritance},
	{name: "nesting", fatal: true, enabled: func(c Config) bool { return c.Semantics }, run: checkNesting},
	{name: "interfaces", enabled: func(c Config) bool { return c.Semantics }, run: checkInterfaceCycles},
	{name: "identifiers", enabled: func(c Config) bool { return c.Naming }, run: checkIdentifiers},
	{name: "versions", enabled: func(c Config) bool { return c.Versions }, run: checkVersions},
}

// extendsParent follows an Extends edge when it stays inside the image;
// chains leaving through a TypeRef or TypeSpec end there.
func extendsParent(td *loader.TypeDef) *loader.TypeDef {
	parent, _ := td.Extends.Value.(*loader.TypeDef)
	return parent
}

// checkInheritance walks every Extends chain, reporting cycles and
// chains deeper than the configured limit. Depths are memoized so the
// pass stays linear in the number of types.
func checkInheritance(asm *loader.Assembly, cfg Config) []errors.Violation {
	const (
		unvisited = 0
		walking   = 1
		done      = 2
	)
	var out []errors.Violation
	state := make(map[*loader.TypeDef]int, len(asm.TypeDefs))
	depth := make(map[*loader.TypeDef]int, len(asm.TypeDefs))
	cyclic := make(map[*loader.TypeDef]bool)

	var visit func(td *loader.TypeDef) int
	visit = func(td *loader.TypeDef) int {
		switch state[td] {
		case walking:
			out = append(out, violation(td.Token, "inheritance chain of %s cycles back to itself", td.FullName()))
			cyclic[td] = true
			return -1
		case done:
			if cyclic[td] {
				return -1
			}
			return depth[td]
		}
		state[td] = walking
		d := 1
		if parent := extendsParent(td); parent != nil {
			pd := visit(parent)
			if pd < 0 {
				// Part of, or downstream of, a cycle reported above.
				cyclic[td] = true
				state[td] = done
				return -1
			}
			d = pd + 1
		}
		state[td] = done
		depth[td] = d
		return d
	}

	for _, td := range asm.TypeDefs {
		if d := visit(td); d > cfg.MaxInheritanceDepth {
			out = append(out, violation(td.Token, "inheritance depth %d of %s exceeds the limit of %d", d, td.FullName(), cfg.MaxInheritanceDepth))
		}
	}
	return out
}

// checkNesting detects cycles in the nested-type containment graph.
func checkNesting(asm *loader.Assembly, _ Config) []errors.Violation {
	var out []errors.Violation
	safe := make(map[*loader.TypeDef]bool)
	for _, td := range asm.TypeDefs {
		if safe[td] {
			continue
		}
		seen := make(map[*loader.TypeDef]bool)
		for cur := td; cur != nil && !safe[cur]; cur = cur.Enclosing {
			if seen[cur] {
				out = append(out, violation(td.Token, "nested containment of %s cycles back to itself", td.FullName()))
				break
			}
			seen[cur] = true
		}
		for t := range seen {
			safe[t] = true
		}
	}
	return out
}

// checkInterfaceCycles detects cycles among in-image interface
// implementations. Edges through TypeRef or TypeSpec leave the image and
// cannot close a cycle here.
func checkInterfaceCycles(asm *loader.Assembly, _ Config) []errors.Violation {
	const (
		unvisited = 0
		walking   = 1
		done      = 2
	)
	var out []errors.Violation
	state := make(map[*loader.TypeDef]int)

	var visit func(td *loader.TypeDef) bool
	visit = func(td *loader.TypeDef) bool {
		switch state[td] {
		case walking:
			return true
		case done:
			return false
		}
		state[td] = walking
		for _, ii := range td.Interfaces {
			iface, ok := ii.Interface.Value.(*loader.TypeDef)
			if !ok {
				continue
			}
			if visit(iface) {
				out = append(out, violation(td.Token, "interface implementations of %s form a cycle", td.FullName()))
			}
		}
		state[td] = done
		return false
	}

	for _, td := range asm.TypeDefs {
		visit(td)
	}
	return out
}

func hasControl(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool { return r < 0x20 || r == 0x7F })
}

// checkIdentifiers rejects unnamed and control-character identifiers.
// Params stay exempt: a return parameter legitimately has no name.
func checkIdentifiers(asm *loader.Assembly, _ Config) []errors.Violation {
	var out []errors.Violation
	for _, td := range asm.TypeDefs {
		if td.Name == "" {
			out = append(out, violation(td.Token, "type has an empty name"))
		}
		if hasControl(td.Name) || hasControl(td.Namespace) {
			out = append(out, violation(td.Token, "type name %q contains control characters", td.FullName()))
		}
	}
	for _, tr := range asm.TypeRefs {
		if tr.Name == "" {
			out = append(out, violation(tr.Token, "type reference has an empty name"))
		}
		if hasControl(tr.Name) || hasControl(tr.Namespace) {
			out = append(out, violation(tr.Token, "type reference name %q contains control characters", tr.Name))
		}
	}
	for _, f := range asm.Fields {
		if f.Name == "" || hasControl(f.Name) {
			out = append(out, violation(f.Token, "field name %q is empty or contains control characters", f.Name))
		}
	}
	for _, m := range asm.Methods {
		if m.Name == "" || hasControl(m.Name) {
			out = append(out, violation(m.Token, "method name %q is empty or contains control characters", m.Name))
		}
	}
	return out
}

// checkVersions flags reserved version components on the assembly
// identity and its references.
func checkVersions(asm *loader.Assembly, _ Config) []errors.Violation {
	var out []errors.Violation
	bad := func(parts ...uint16) bool {
		for _, p := range parts {
			if p == 0xFFFF {
				return true
			}
		}
		return false
	}
	if info := asm.Info; info != nil {
		if bad(info.MajorVersion, info.MinorVersion, info.BuildNumber, info.RevisionNumber) {
			out = append(out, violation(info.Token, "assembly %s uses a reserved version component", info.Name))
		}
	}
	for _, ar := range asm.AssemblyRefs {
		if bad(ar.MajorVersion, ar.MinorVersion, ar.BuildNumber, ar.RevisionNumber) {
			out = append(out, violation(ar.Token, "assembly reference %s uses a reserved version component", ar.Name))
		}
	}
	return out
}
