package tendril

import "github.com/tendril-lang/tendril/ast"

// Inspector provides a convenient way to inspect a compiled pattern's
// AST without running the engine (SPEC_FULL.md §12.1), the way
// tsqlparser.Inspector walks a parsed program. cmd/tendril compile
// --explain uses it to summarize a pattern's bindings, buckets, and
// labels.
type Inspector struct {
	nodes []ast.Node
}

// NewInspector walks p's AST once, collecting every node it visits.
func NewInspector(p *Pattern) *Inspector {
	insp := &Inspector{}
	insp.collect(p.ast.Root)
	return insp
}

func (insp *Inspector) collect(n ast.Node) {
	if n == nil {
		return
	}
	insp.nodes = append(insp.nodes, n)

	switch v := n.(type) {
	case *ast.ScalarBind:
		insp.collect(v.Inner)
		insp.collect(v.Guard)
	case *ast.GroupBind:
		insp.collect(v.Inner)
	case *ast.Guard:
		insp.collect(v.Inner)
	case *ast.Alt:
		for _, b := range v.Branches {
			insp.collect(b)
		}
	case *ast.Quantified:
		insp.collect(v.Inner)
	case *ast.Lookahead:
		insp.collect(v.Inner)
	case *ast.Seq:
		for _, it := range v.Items {
			insp.collect(it)
		}
	case *ast.Array:
		insp.collect(v.Body)
	case *ast.Object:
		for _, fc := range v.Terms {
			insp.collect(fc.Key)
			for _, bc := range fc.Breadcrumbs {
				insp.collect(bc.Key)
			}
			if fc.Value != nil {
				insp.collect(fc.Value)
			}
			if fc.Flow != nil {
				for _, arm := range fc.Flow.Arms {
					insp.collect(arm.Value)
				}
			}
		}
	case *ast.Slice:
		insp.collect(v.Body)
	}
}

// FindBindings returns the name of every scalar ($x) and group (%x/@x)
// binding the pattern declares, in AST visitation order, duplicates
// included (a name may be bound at more than one site).
func (insp *Inspector) FindBindings() []string {
	var out []string
	for _, n := range insp.nodes {
		switch v := n.(type) {
		case *ast.ScalarBind:
			if v.Name != "" {
				out = append(out, v.Name)
			}
		case *ast.GroupBind:
			if v.Name != "" {
				out = append(out, v.Name)
			}
		case *ast.Object:
			if v.Remainder != nil && v.Remainder.Bind != "" {
				out = append(out, v.Remainder.Bind)
			}
		}
	}
	return out
}

// FindBuckets returns the name of every bucket (@name/%name flow
// target) referenced anywhere in flow directives.
func (insp *Inspector) FindBuckets() []string {
	var out []string
	for _, n := range insp.nodes {
		obj, ok := n.(*ast.Object)
		if !ok {
			continue
		}
		for _, fc := range obj.Terms {
			if fc.Flow == nil {
				continue
			}
			for _, arm := range fc.Flow.Arms {
				if arm.Bucket != nil {
					out = append(out, arm.Bucket.Name)
				}
			}
		}
	}
	return out
}

// FindLabels returns the name of every label attached to an Array or
// Object node in the pattern.
func (insp *Inspector) FindLabels() []string {
	var out []string
	for _, n := range insp.nodes {
		switch v := n.(type) {
		case *ast.Array:
			if v.Label != "" {
				out = append(out, v.Label)
			}
		case *ast.Object:
			if v.Label != "" {
				out = append(out, v.Label)
			}
		}
	}
	return out
}
