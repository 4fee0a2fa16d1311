package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/tessera/pkg/clip"
	"github.com/chazu/tessera/pkg/geom"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms tessera script source before passing it
// to zygomys. It performs three transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids registering keyword symbols as globals, which would
//     conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: move-to -> move_to. zygomys does not
//     allow hyphens in identifiers (it reads them as subtraction).
//
//  3. Lisp ; line comments become zygomys // comments.
//
// All transformations respect string literal boundaries.
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
		// Convert ; line comments to // comments.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
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
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, b[i+1:j]...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when the hyphen sits between identifier characters
		// (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
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

// ---------------------------------------------------------------------------
// Custom Sexp types for passing kernel values through zygomys
// ---------------------------------------------------------------------------

// sexpVec wraps a geom.Vec.
type sexpVec struct {
	vec geom.Vec
}

func (v *sexpVec) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec %.3f %.3f)", v.vec.X, v.vec.Y)
}
func (v *sexpVec) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a *geom.Shape so builtins can mutate and derive
// from it across calls.
type sexpShape struct {
	shape *geom.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %d %s)", len(s.shape.Edges()), s.shape.Winding())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks whether a Sexp is a preprocessed keyword string,
// returning the keyword name without the prefix.
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

// kwArgs holds the result of parsing a mixed positional+keyword
// argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
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
				// Keyword at end with no value: treat as flag.
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

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string.
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// toWinding converts :ccw / :cw to a geom.Winding.
func toWinding(s zygo.Sexp) (geom.Winding, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return geom.CCW, fmt.Errorf("expected winding keyword (:ccw, :cw): %w", err)
	}
	switch name {
	case "ccw":
		return geom.CCW, nil
	case "cw":
		return geom.CW, nil
	}
	return geom.CCW, fmt.Errorf("invalid winding %q, expected ccw or cw", name)
}

// toVec extracts a geom.Vec from a sexpVec.
func toVec(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec); ok {
		return v.vec, nil
	}
	return geom.Vec{}, fmt.Errorf("expected vec, got %T (%s)", s, s.SexpString(nil))
}

// toShape extracts a *geom.Shape from a sexpShape.
func toShape(s zygo.Sexp) (*geom.Shape, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (list) or SexpArray to a slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toShapes flattens a mix of shapes and lists/arrays of shapes.
func toShapes(args []zygo.Sexp) ([]*geom.Shape, error) {
	var out []*geom.Shape
	for _, a := range args {
		if sh, ok := a.(*sexpShape); ok {
			out = append(out, sh.shape)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("expected shape or list of shapes: %w", err)
		}
		for _, item := range items {
			sh, err := toShape(item)
			if err != nil {
				return nil, err
			}
			out = append(out, sh)
		}
	}
	return out, nil
}

// shapesToSexp wraps kernel shapes back into a script-level list.
func shapesToSexp(shapes []*geom.Shape) zygo.Sexp {
	exprs := make([]zygo.Sexp, len(shapes))
	for i, s := range shapes {
		exprs[i] = &sexpShape{shape: s}
	}
	return zygo.MakeList(exprs)
}

// ---------------------------------------------------------------------------
// Evaluation state
// ---------------------------------------------------------------------------

// defaultCanvasSize is used until the script calls (canvas w h).
const defaultCanvasSize = 512

// evalState is the per-evaluation sink the builtins populate.
type evalState struct {
	scene *geom.Scene
}

func newEvalState() *evalState {
	return &evalState{scene: geom.NewScene(defaultCanvasSize, defaultCanvasSize)}
}

// applyShapeTags reads the shared :color / :group / :ephemeral
// keywords onto a shape.
func applyShapeTags(s *geom.Shape, pa kwArgs) error {
	if v, ok := pa.kw["color"]; ok {
		c, err := toString(v)
		if err != nil {
			return fmt.Errorf("color: %w", err)
		}
		s.Color = c
	}
	if v, ok := pa.kw["group"]; ok {
		g, err := toString(v)
		if err != nil {
			return fmt.Errorf("group: %w", err)
		}
		s.Group = g
	}
	if _, ok := pa.kw["ephemeral"]; ok {
		s.Ephemeral = true
	}
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the tessera DSL builtins into a zygomys
// environment. The builtins construct and mutate kernel shapes and
// populate the evaluation's scene via (place ...).
//
// Source code must be preprocessed with preprocessSource() before
// evaluation so that :keyword tokens become recognizable string
// literals and kebab-case names match the registered underscore forms.
func registerBuiltins(env *zygo.Zlisp, st *evalState) {

	// -----------------------------------------------------------------------
	// (canvas 800 600)
	// -----------------------------------------------------------------------
	env.AddFunction("canvas", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("canvas: want width and height, got %d args", len(args))
		}
		w, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("canvas: width: %w", err)
		}
		h, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("canvas: height: %w", err)
		}
		st.scene.Width, st.scene.Height = w, h
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec 10 20)
	// -----------------------------------------------------------------------
	env.AddFunction("vec", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("vec: want x and y, got %d args", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec: y: %w", err)
		}
		return &sexpVec{vec: geom.V(x, y)}, nil
	})

	// -----------------------------------------------------------------------
	// (shape (vec 0 0) (vec 10 0) (vec 10 10) :winding :ccw :color "#f00")
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		var pts []geom.Vec
		for _, p := range pa.positional {
			// A single list argument carries all points.
			if items, err := sexpListToSlice(p); err == nil && len(pa.positional) == 1 {
				for _, item := range items {
					v, err := toVec(item)
					if err != nil {
						return zygo.SexpNull, fmt.Errorf("shape: %w", err)
					}
					pts = append(pts, v)
				}
				break
			}
			v, err := toVec(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shape: %w", err)
			}
			pts = append(pts, v)
		}

		winding := geom.CCW
		if v, ok := pa.kw["winding"]; ok {
			w, err := toWinding(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shape: %w", err)
			}
			winding = w
		}

		s, err := geom.NewShape(pts, winding)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		if err := applyShapeTags(s, pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		return &sexpShape{shape: s}, nil
	})

	// -----------------------------------------------------------------------
	// (polygon :sides 6 :radius 10 :at (vec 50 50) :rot 0.52)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)

		sides := 0
		if v, ok := pa.kw["sides"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: sides: %w", err)
			}
			sides = int(f)
		}
		radius := 1.0
		if v, ok := pa.kw["radius"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: radius: %w", err)
			}
			radius = f
		}
		var center geom.Vec
		if v, ok := pa.kw["at"]; ok {
			c, err := toVec(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: at: %w", err)
			}
			center = c
		}
		rot := 0.0
		if v, ok := pa.kw["rot"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: rot: %w", err)
			}
			rot = f
		}

		s, err := geom.RegularPolygon(sides, radius, center, rot)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		if err := applyShapeTags(s, pa); err != nil {
			return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
		}
		return &sexpShape{shape: s}, nil
	})

	// -----------------------------------------------------------------------
	// (scale s 2.0 :about (vec 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("scale", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("scale: want shape and factor")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: %w", err)
		}
		f, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("scale: factor: %w", err)
		}
		if v, ok := pa.kw["about"]; ok {
			c, err := toVec(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("scale: about: %w", err)
			}
			s.ScaleAbout(f, c)
		} else {
			s.Scale(f)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (rotate s 1.57 :about (vec 0 0))
	// -----------------------------------------------------------------------
	env.AddFunction("rotate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("rotate: want shape and angle")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: %w", err)
		}
		a, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("rotate: angle: %w", err)
		}
		if v, ok := pa.kw["about"]; ok {
			c, err := toVec(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rotate: about: %w", err)
			}
			s.RotateAbout(a, c)
		} else {
			s.Rotate(a)
		}
		return pa.positional[0], nil
	})

	// -----------------------------------------------------------------------
	// (translate s (vec 10 0)) / (move-to s (vec 100 100))
	// -----------------------------------------------------------------------
	env.AddFunction("translate", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("translate: want shape and offset")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: %w", err)
		}
		off, err := toVec(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("translate: offset: %w", err)
		}
		s.Translate(off)
		return args[0], nil
	})

	env.AddFunction("move_to", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("move-to: want shape and position")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-to: %w", err)
		}
		pos, err := toVec(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-to: position: %w", err)
		}
		s.MoveTo(pos)
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (reverse s)
	// -----------------------------------------------------------------------
	env.AddFunction("reverse", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("reverse: want shape")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("reverse: %w", err)
		}
		s.Reverse()
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (offset s 5 :miter-limit 4)
	// -----------------------------------------------------------------------
	env.AddFunction("offset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("offset: want shape and distance")
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: %w", err)
		}
		d, err := toFloat64(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("offset: distance: %w", err)
		}
		limit := float64(geom.DefaultMiterLimit)
		if v, ok := pa.kw["miter-limit"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("offset: miter-limit: %w", err)
			}
			limit = f
		}
		return &sexpShape{shape: s.OffsetMiter(d, limit)}, nil
	})

	// -----------------------------------------------------------------------
	// (union a b c ...)
	// -----------------------------------------------------------------------
	env.AddFunction("union", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shapes, err := toShapes(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("union: %w", err)
		}
		return shapesToSexp(clip.Union(shapes)), nil
	})

	// -----------------------------------------------------------------------
	// (difference subjects clips)
	// -----------------------------------------------------------------------
	env.AddFunction("difference", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("difference: want subjects and clips")
		}
		subjects, err := toShapes(args[:1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: subjects: %w", err)
		}
		clips, err := toShapes(args[1:])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("difference: clips: %w", err)
		}
		return shapesToSexp(clip.Difference(subjects, clips)), nil
	})

	// -----------------------------------------------------------------------
	// (ephemeral s)
	// -----------------------------------------------------------------------
	env.AddFunction("ephemeral", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("ephemeral: want shape")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("ephemeral: %w", err)
		}
		s.Ephemeral = true
		return args[0], nil
	})

	// -----------------------------------------------------------------------
	// (place s ...)
	// -----------------------------------------------------------------------
	env.AddFunction("place", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		shapes, err := toShapes(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("place: %w", err)
		}
		st.scene.Add(shapes...)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// Queries: (area s), (centroid s), (contains s (vec x y))
	// -----------------------------------------------------------------------
	env.AddFunction("area", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("area: want shape")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("area: %w", err)
		}
		return &zygo.SexpFloat{Val: s.Area()}, nil
	})

	env.AddFunction("centroid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("centroid: want shape")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("centroid: %w", err)
		}
		return &sexpVec{vec: s.Centroid()}, nil
	})

	env.AddFunction("contains", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("contains: want shape and point")
		}
		s, err := toShape(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("contains: %w", err)
		}
		p, err := toVec(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("contains: point: %w", err)
		}
		return &zygo.SexpBool{Val: s.ContainsPoint(p)}, nil
	})
}
