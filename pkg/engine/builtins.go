package engine

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/callus/pkg/pipeline"
	"github.com/chazu/callus/pkg/repair"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms Callus Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: fill-holes -> fill_holes
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNodeRef wraps a pipeline.NodeID so it can be passed between builtins.
type sexpNodeRef struct {
	id   pipeline.NodeID
	name string // human-readable name for error messages
}

func (n *sexpNodeRef) SexpString(ps *zygo.PrintState) string {
	if n.name != "" {
		return fmt.Sprintf("(noderef %q)", n.name)
	}
	return fmt.Sprintf("(noderef %s)", n.id.Short())
}
func (n *sexpNodeRef) Type() *zygo.RegisteredType { return nil }

// sexpVec3 wraps an r3.Vec.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %.1f %.1f %.1f)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at the end with no value; treat as a flag.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a Sexp.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a bool from a Sexp. A keyword given as a trailing flag
// with no value counts as true.
func toBool(s zygo.Sexp) (bool, error) {
	switch v := s.(type) {
	case *zygo.SexpBool:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return true, nil
		}
	}
	return false, fmt.Errorf("expected bool, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_bfs) and plain strings ("bfs").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toOrientStrategy converts a strategy keyword (:library, :bfs) to the
// repair enum.
func toOrientStrategy(s zygo.Sexp) (repair.OrientStrategy, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	return repair.ParseOrientStrategy(name)
}

// toFillStrategy converts a strategy keyword (:library, :suite, :fan) to
// the repair enum.
func toFillStrategy(s zygo.Sexp) (repair.FillStrategy, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	return repair.ParseFillStrategy(name)
}

// toNodeRef extracts a NodeID from a sexpNodeRef.
func toNodeRef(s zygo.Sexp) (pipeline.NodeID, error) {
	if ref, ok := s.(*sexpNodeRef); ok {
		return ref.id, nil
	}
	return "", fmt.Errorf("expected node reference, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts an r3.Vec from a sexpVec3.
func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// Node construction
// ---------------------------------------------------------------------------

// addNode interns a node and returns a reference to it. The seed determines
// the ID, so two expressions describing the same work collapse onto one node.
func addNode(p *pipeline.Pipeline, kind pipeline.NodeKind, seed string, children []pipeline.NodeID, data pipeline.NodeData) *sexpNodeRef {
	id := pipeline.NewNodeID(seed)
	p.AddNode(&pipeline.Node{
		ID:       id,
		Kind:     kind,
		Children: children,
		Data:     data,
	})
	return &sexpNodeRef{id: id}
}

// meshArg extracts the mandatory leading node reference of an op form.
func meshArg(op string, pa kwArgs) (pipeline.NodeID, error) {
	if len(pa.positional) < 1 {
		return "", fmt.Errorf("%s requires a mesh reference as first argument", op)
	}
	id, err := toNodeRef(pa.positional[0])
	if err != nil {
		return "", fmt.Errorf("%s: mesh: %w", op, err)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs all Callus DSL builtins into a zygomys
// environment. The builtins operate on the provided Pipeline, populating it
// during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation
// so that :keyword tokens are converted to recognizable string literals and
// kebab-case form names (fill-holes) reach their underscored registrations
// (fill_holes).
func registerBuiltins(env *zygo.Zlisp, p *pipeline.Pipeline) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec3: z: %w", err)
		}

		return &sexpVec3{vec: r3.Vec{X: x, Y: y, Z: z}}, nil
	})

	// -----------------------------------------------------------------------
	// (cube 10)
	// -----------------------------------------------------------------------
	env.AddFunction("cube", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("cube requires exactly 1 argument, got %d", len(args))
		}

		size, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("cube: size: %w", err)
		}

		d := pipeline.SourceData{Shape: pipeline.ShapeCube, Size: r3.Vec{X: size}}
		seed := fmt.Sprintf("cube/%g", size)
		return addNode(p, pipeline.NodeSource, seed, nil, d), nil
	})

	// -----------------------------------------------------------------------
	// (box 10 20 5)
	// -----------------------------------------------------------------------
	env.AddFunction("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("box requires exactly 3 arguments, got %d", len(args))
		}

		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: y: %w", err)
		}
		z, err := toFloat64(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("box: z: %w", err)
		}

		d := pipeline.SourceData{Shape: pipeline.ShapeBox, Size: r3.Vec{X: x, Y: y, Z: z}}
		seed := fmt.Sprintf("box/%g,%g,%g", x, y, z)
		return addNode(p, pipeline.NodeSource, seed, nil, d), nil
	})

	// -----------------------------------------------------------------------
	// (sphere :radius 5 :cells 40)
	// -----------------------------------------------------------------------
	env.AddFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d := pipeline.SourceData{Shape: pipeline.ShapeSphere}

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: radius: %w", err)
			}
			d.Radius = f
		}
		if v, ok := pa.kw["cells"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: cells: %w", err)
			}
			d.Segments = n
		}

		seed := fmt.Sprintf("sphere/%g/%d", d.Radius, d.Segments)
		return addNode(p, pipeline.NodeSource, seed, nil, d), nil
	})

	// -----------------------------------------------------------------------
	// (open-cylinder :radius 2 :height 10 :segments 16)
	//
	// Note: registered as "open_cylinder" because zygomys does not support
	// hyphens in identifiers. The preprocessor converts open-cylinder to
	// open_cylinder in the source.
	// -----------------------------------------------------------------------
	env.AddFunction("open_cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		d := pipeline.SourceData{Shape: pipeline.ShapeCylinder}

		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("open-cylinder: radius: %w", err)
			}
			d.Radius = f
		}
		if v, ok := pa.kw["height"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("open-cylinder: height: %w", err)
			}
			d.Height = f
		}
		if v, ok := pa.kw["segments"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("open-cylinder: segments: %w", err)
			}
			d.Segments = n
		}

		seed := fmt.Sprintf("open-cylinder/%g,%g/%d", d.Radius, d.Height, d.Segments)
		return addNode(p, pipeline.NodeSource, seed, nil, d), nil
	})

	// -----------------------------------------------------------------------
	// (plane 10 8)
	// -----------------------------------------------------------------------
	env.AddFunction("plane", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("plane requires exactly 2 arguments, got %d", len(args))
		}

		w, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: width: %w", err)
		}
		dp, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("plane: depth: %w", err)
		}

		d := pipeline.SourceData{Shape: pipeline.ShapePlane, Size: r3.Vec{X: w, Y: dp}}
		seed := fmt.Sprintf("plane/%g,%g", w, dp)
		return addNode(p, pipeline.NodeSource, seed, nil, d), nil
	})

	// -----------------------------------------------------------------------
	// (translate mesh :by (vec3 1 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("translate", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.TransformData{}
		if v, ok := pa.kw["by"]; ok {
			vec, err := toVec3(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("translate: by: %w", err)
			}
			d.Offset = vec
		}

		seed := fmt.Sprintf("translate/%g,%g,%g/%s", d.Offset.X, d.Offset.Y, d.Offset.Z, childID)
		return addNode(p, pipeline.NodeTransform, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (concat a b ...)
	// -----------------------------------------------------------------------
	env.AddFunction("concat", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("concat requires at least 2 mesh references, got %d", len(args))
		}

		var children []pipeline.NodeID
		var parts []string
		for i, a := range args {
			ref, ok := a.(*sexpNodeRef)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("concat: child %d: expected node reference, got %T (%s)",
					i, a, a.SexpString(nil))
			}
			children = append(children, ref.id)
			parts = append(parts, string(ref.id))
		}

		seed := "concat/" + strings.Join(parts, "+")
		return addNode(p, pipeline.NodeCombine, seed, children, pipeline.CombineData{}), nil
	})

	// -----------------------------------------------------------------------
	// (check-normals mesh)
	// -----------------------------------------------------------------------
	env.AddFunction("check_normals", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("check-normals", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		seed := fmt.Sprintf("check-normals/%s", childID)
		return addNode(p, pipeline.NodeCheck, seed, []pipeline.NodeID{childID}, pipeline.CheckData{}), nil
	})

	// -----------------------------------------------------------------------
	// (fix-normals mesh :strategy :bfs)
	// -----------------------------------------------------------------------
	env.AddFunction("fix_normals", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("fix-normals", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.OrientData{}
		if v, ok := pa.kw["strategy"]; ok {
			s, err := toOrientStrategy(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-normals: strategy: %w", err)
			}
			d.Strategy = s
		}

		seed := fmt.Sprintf("fix-normals/%s/%s", d.Strategy, childID)
		return addNode(p, pipeline.NodeOrient, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (detect-intersections mesh)
	// -----------------------------------------------------------------------
	env.AddFunction("detect_intersections", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("detect-intersections", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		seed := fmt.Sprintf("detect-intersections/%s", childID)
		return addNode(p, pipeline.NodeDetect, seed, []pipeline.NodeID{childID}, pipeline.DetectData{}), nil
	})

	// -----------------------------------------------------------------------
	// (remesh-intersections mesh :detect-only true :remove-unreferenced true
	//                            :extract-outer-hull true :stitch-all true)
	// -----------------------------------------------------------------------
	env.AddFunction("remesh_intersections", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("remesh-intersections", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.RemeshData{}
		if v, ok := pa.kw["detect-only"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remesh-intersections: detect-only: %w", err)
			}
			d.DetectOnly = b
		}
		if v, ok := pa.kw["remove-unreferenced"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remesh-intersections: remove-unreferenced: %w", err)
			}
			d.RemoveUnreferenced = b
		}
		if v, ok := pa.kw["extract-outer-hull"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remesh-intersections: extract-outer-hull: %w", err)
			}
			d.ExtractOuterHull = b
		}
		if v, ok := pa.kw["stitch-all"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remesh-intersections: stitch-all: %w", err)
			}
			d.StitchAll = b
		}

		seed := fmt.Sprintf("remesh-intersections/%v,%v,%v,%v/%s",
			d.DetectOnly, d.RemoveUnreferenced, d.ExtractOuterHull, d.StitchAll, childID)
		return addNode(p, pipeline.NodeRemesh, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (fill-holes mesh :strategy :fan :max-hole-size 50)
	// -----------------------------------------------------------------------
	env.AddFunction("fill_holes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("fill-holes", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.FillData{}
		if v, ok := pa.kw["strategy"]; ok {
			s, err := toFillStrategy(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fill-holes: strategy: %w", err)
			}
			d.Strategy = s
		}
		if v, ok := pa.kw["max-hole-size"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fill-holes: max-hole-size: %w", err)
			}
			d.MaxHoleSize = n
		}

		seed := fmt.Sprintf("fill-holes/%s/%d/%s", d.Strategy, d.MaxHoleSize, childID)
		return addNode(p, pipeline.NodeFill, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (merge-vertices mesh :tolerance 1e-5)
	// -----------------------------------------------------------------------
	env.AddFunction("merge_vertices", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("merge-vertices", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.WeldData{}
		if v, ok := pa.kw["tolerance"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("merge-vertices: tolerance: %w", err)
			}
			d.Tolerance = f
		}

		seed := fmt.Sprintf("merge-vertices/%g/%s", d.Tolerance, childID)
		return addNode(p, pipeline.NodeWeld, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (remove-degenerate mesh :area-tol 1e-10)
	// -----------------------------------------------------------------------
	env.AddFunction("remove_degenerate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("remove-degenerate", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.PruneData{}
		if v, ok := pa.kw["area-tol"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("remove-degenerate: area-tol: %w", err)
			}
			d.AreaTol = f
		}

		seed := fmt.Sprintf("remove-degenerate/%g/%s", d.AreaTol, childID)
		return addNode(p, pipeline.NodePrune, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (fix-by-removal mesh :fill-holes true :fix-normals true :max-hole-size 80)
	// -----------------------------------------------------------------------
	env.AddFunction("fix_by_removal", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("fix-by-removal", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.FixupData{Method: pipeline.FixRemoval}
		if v, ok := pa.kw["fill-holes"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-by-removal: fill-holes: %w", err)
			}
			d.FillHoles = b
		}
		if v, ok := pa.kw["fix-normals"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-by-removal: fix-normals: %w", err)
			}
			d.FixNormals = b
		}
		if v, ok := pa.kw["max-hole-size"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-by-removal: max-hole-size: %w", err)
			}
			d.MaxHoleSize = n
		}

		seed := fmt.Sprintf("fix-by-removal/%v,%v,%d/%s", d.FillHoles, d.FixNormals, d.MaxHoleSize, childID)
		return addNode(p, pipeline.NodeFixup, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (fix-by-perturbation mesh :epsilon 0.01 :max-iterations 5
	//                           :inward true :scale-by-count true)
	// -----------------------------------------------------------------------
	env.AddFunction("fix_by_perturbation", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("fix-by-perturbation", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		d := pipeline.FixupData{Method: pipeline.FixPerturbation}
		if v, ok := pa.kw["epsilon"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-by-perturbation: epsilon: %w", err)
			}
			d.Epsilon = f
		}
		if v, ok := pa.kw["max-iterations"]; ok {
			n, err := toInt(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-by-perturbation: max-iterations: %w", err)
			}
			d.MaxIterations = n
		}
		if v, ok := pa.kw["inward"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-by-perturbation: inward: %w", err)
			}
			d.Inward = b
		}
		if v, ok := pa.kw["scale-by-count"]; ok {
			b, err := toBool(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("fix-by-perturbation: scale-by-count: %w", err)
			}
			d.ScaleByCount = b
		}

		seed := fmt.Sprintf("fix-by-perturbation/%g,%d,%v,%v/%s",
			d.Epsilon, d.MaxIterations, d.Inward, d.ScaleByCount, childID)
		return addNode(p, pipeline.NodeFixup, seed, []pipeline.NodeID{childID}, d), nil
	})

	// -----------------------------------------------------------------------
	// (mesh-info mesh)
	// -----------------------------------------------------------------------
	env.AddFunction("mesh_info", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		childID, err := meshArg("mesh-info", pa)
		if err != nil {
			return zygo.SexpNull, err
		}

		seed := fmt.Sprintf("mesh-info/%s", childID)
		return addNode(p, pipeline.NodeInfo, seed, []pipeline.NodeID{childID}, pipeline.InfoData{}), nil
	})

	// -----------------------------------------------------------------------
	// (emit "repaired" mesh)
	// -----------------------------------------------------------------------
	env.AddFunction("emit", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return zygo.SexpNull, fmt.Errorf("emit requires a name and a mesh reference")
		}

		emitName, err := toString(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: name: %w", err)
		}
		id, err := toNodeRef(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("emit: mesh: %w", err)
		}

		n := p.Get(id)
		if n == nil {
			return zygo.SexpNull, fmt.Errorf("emit: no node for reference %s", id.Short())
		}
		if n.Name != "" && n.Name != emitName {
			// Content addressing folds identical expressions onto one
			// node, so a second emit of the same work must reuse the
			// first name.
			return zygo.SexpNull, fmt.Errorf("emit: node already named %q", n.Name)
		}

		n.Name = emitName
		p.AddNode(n) // refresh the name index
		p.AddRoot(id)

		return &sexpNodeRef{id: id, name: emitName}, nil
	})
}
