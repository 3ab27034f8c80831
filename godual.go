// Package godual provides forward-mode automatic differentiation for Go.
//
// Design goals:
//   - Single file, dependency-free kernel
//   - Exact derivatives via dual-number arithmetic (no finite differences)
//   - Pure value semantics: every operation returns a new Dual
//   - AI/LLM friendly: JSON expression trees and MCP-ready tool calls
//   - Embeddable in Go services, CLI tools, and agent backends
package godual

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// Dual — primal value paired with its tangent
// ============================================================

// Dual carries a primal value Val and the derivative Der of that value
// with respect to the single seeded input variable.
type Dual struct {
	Val float64
	Der float64
}

// D constructs a dual number from explicit primal and tangent parts.
func D(val, der float64) Dual { return Dual{Val: val, Der: der} }

// Const lifts a plain real into a dual number. A constant never varies
// with the input, so its tangent is zero.
func Const(c float64) Dual { return Dual{Val: c} }

// Var seeds the free variable: the derivative of x with respect to
// itself is 1.
func Var(x float64) Dual { return Dual{Val: x, Der: 1} }

func (a Dual) IsZero() bool { return a.Val == 0 }
func (a Dual) IsNaN() bool  { return math.IsNaN(a.Val) || math.IsNaN(a.Der) }

func (a Dual) String() string { return fmt.Sprintf("(%g, %g)", a.Val, a.Der) }

// ============================================================
// Arithmetic
// ============================================================

func (a Dual) Add(b Dual) Dual { return Dual{a.Val + b.Val, a.Der + b.Der} }
func (a Dual) Sub(b Dual) Dual { return Dual{a.Val - b.Val, a.Der - b.Der} }
func (a Dual) Neg() Dual       { return Dual{-a.Val, -a.Der} }

// Mul applies the product rule: (ab)' = a'b + ab'.
func (a Dual) Mul(b Dual) Dual {
	return Dual{a.Val * b.Val, a.Der*b.Val + a.Val*b.Der}
}

// Scalar-constant conveniences. Each is exactly Const(c) fed through the
// dual-dual operation above.
func (a Dual) AddConst(c float64) Dual { return Dual{a.Val + c, a.Der} }
func (a Dual) SubConst(c float64) Dual { return Dual{a.Val - c, a.Der} }
func (a Dual) MulConst(c float64) Dual { return Dual{a.Val * c, a.Der * c} }

// ============================================================
// Elementary functions
// ============================================================

// Apply extends the engine with an elementary function g given its
// derivative dg, per the chain rule: g(u)' = g'(u)·u'. Every elementary
// function below is one call to Apply; adding another needs nothing else.
func Apply(a Dual, g, dg func(float64) float64) Dual {
	return Dual{g(a.Val), dg(a.Val) * a.Der}
}

func Sin(a Dual) Dual { return Dual{math.Sin(a.Val), math.Cos(a.Val) * a.Der} }
func Cos(a Dual) Dual { return Dual{math.Cos(a.Val), -math.Sin(a.Val) * a.Der} }
func Exp(a Dual) Dual { return Dual{math.Exp(a.Val), math.Exp(a.Val) * a.Der} }

func Tan(a Dual) Dual {
	c := math.Cos(a.Val)
	return Dual{math.Tan(a.Val), a.Der / (c * c)}
}

// Log is the natural logarithm. Outside the domain the IEEE-754 result
// (NaN or -Inf) propagates through both components.
func Log(a Dual) Dual { return Dual{math.Log(a.Val), a.Der / a.Val} }

func Sqrt(a Dual) Dual {
	s := math.Sqrt(a.Val)
	return Dual{s, a.Der / (2 * s)}
}

func Sinh(a Dual) Dual { return Dual{math.Sinh(a.Val), math.Cosh(a.Val) * a.Der} }
func Cosh(a Dual) Dual { return Dual{math.Cosh(a.Val), math.Sinh(a.Val) * a.Der} }

func Tanh(a Dual) Dual {
	t := math.Tanh(a.Val)
	return Dual{t, (1 - t*t) * a.Der}
}

// Pow raises a to a constant real exponent: (u^p)' = p·u^(p-1)·u'.
func Pow(a Dual, p float64) Dual {
	return Dual{math.Pow(a.Val, p), p * math.Pow(a.Val, p-1) * a.Der}
}

// ============================================================
// Derivative driver
// ============================================================

// Func is a one-variable expression over the dual-number operation set.
type Func func(Dual) Dual

// Deriv turns f into its derivative function. The returned function
// seeds Var(x), runs f, and reads off the tangent. The result is the
// analytic derivative evaluated at x, not an approximation: the only
// error is ordinary floating-point rounding.
func Deriv(f Func) func(float64) float64 {
	return func(x float64) float64 { return f(Var(x)).Der }
}

// DerivAt evaluates f'(x) directly.
func DerivAt(f Func, x float64) float64 { return f(Var(x)).Der }

// ValueAt evaluates f(x) with a zero tangent seed, so the result's Der
// is 0 and Val is the plain function value.
func ValueAt(f Func, x float64) float64 { return f(Const(x)).Val }

// ============================================================
// JSON expression trees
// ============================================================

// elementary maps the function names accepted in expression trees.
var elementary = map[string]func(Dual) Dual{
	"sin":  Sin,
	"cos":  Cos,
	"tan":  Tan,
	"exp":  Exp,
	"ln":   Log,
	"sqrt": Sqrt,
	"sinh": Sinh,
	"cosh": Cosh,
	"tanh": Tanh,
}

// Compile turns a JSON expression object into a Func closed over the
// kernel operations. Supported node types:
//
//	{"type":"num",  "value": 3}
//	{"type":"var",  "name": "x"}
//	{"type":"add",  "terms": [...]}
//	{"type":"sub",  "left": {...}, "right": {...}}
//	{"type":"mul",  "factors": [...]}
//	{"type":"neg",  "arg": {...}}
//	{"type":"func", "name": "sin", "arg": {...}}
//
// varName names the single free variable; any other variable is an error.
func Compile(data map[string]interface{}, varName string) (Func, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subFuncs := func(field string) ([]Func, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		if len(raw) == 0 {
			return nil, fmt.Errorf("%s: %q must be non-empty", typ, field)
		}
		out := make([]Func, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			f, err := Compile(m, varName)
			if err != nil {
				return nil, fmt.Errorf("%s: %q[%d]: %w", typ, field, i, err)
			}
			out[i] = f
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		v, ok := data["value"]
		if !ok {
			return nil, fmt.Errorf("num: missing 'value'")
		}
		c, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("num: 'value' must be a number")
		}
		return func(Dual) Dual { return Const(c) }, nil

	case "var":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if name != varName {
			return nil, fmt.Errorf("unknown variable %q (free variable is %q)", name, varName)
		}
		return func(x Dual) Dual { return x }, nil

	case "add":
		terms, err := subFuncs("terms")
		if err != nil {
			return nil, err
		}
		return func(x Dual) Dual {
			acc := terms[0](x)
			for _, t := range terms[1:] {
				acc = acc.Add(t(x))
			}
			return acc
		}, nil

	case "sub":
		leftM, err := subObj("left")
		if err != nil {
			return nil, err
		}
		rightM, err := subObj("right")
		if err != nil {
			return nil, err
		}
		left, err := Compile(leftM, varName)
		if err != nil {
			return nil, fmt.Errorf("sub: left: %w", err)
		}
		right, err := Compile(rightM, varName)
		if err != nil {
			return nil, fmt.Errorf("sub: right: %w", err)
		}
		return func(x Dual) Dual { return left(x).Sub(right(x)) }, nil

	case "mul":
		factors, err := subFuncs("factors")
		if err != nil {
			return nil, err
		}
		return func(x Dual) Dual {
			acc := factors[0](x)
			for _, f := range factors[1:] {
				acc = acc.Mul(f(x))
			}
			return acc
		}, nil

	case "neg":
		argM, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		arg, err := Compile(argM, varName)
		if err != nil {
			return nil, fmt.Errorf("neg: arg: %w", err)
		}
		return func(x Dual) Dual { return arg(x).Neg() }, nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		g, ok := elementary[name]
		if !ok {
			return nil, fmt.Errorf("unknown function: %s", name)
		}
		argM, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		arg, err := Compile(argM, varName)
		if err != nil {
			return nil, fmt.Errorf("func: arg: %w", err)
		}
		return func(x Dual) Dual { return g(arg(x)) }, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall evaluates a tool request against a compiled expression.
// Tools:
//
//	eval    — f(at)
//	deriv   — f'(at)
//	tangent — both components in one pass
func HandleToolCall(req ToolRequest) ToolResponse {
	getString := func(key string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			return "", fmt.Errorf("missing param: %s", key)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("param %s must be a non-empty string", key)
		}
		return s, nil
	}
	getFloat := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, fmt.Errorf("missing param: %s", key)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return f, nil
	}
	getFunc := func(varName string) (Func, error) {
		v, ok := req.Params["expr"]
		if !ok {
			return nil, fmt.Errorf("missing param: expr")
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param expr must be an object")
		}
		return Compile(m, varName)
	}

	varName, err := getString("var")
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	at, err := getFloat("at")
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}
	f, err := getFunc(varName)
	if err != nil {
		return ToolResponse{Error: err.Error()}
	}

	switch req.Tool {
	case "eval":
		v := ValueAt(f, at)
		return ToolResponse{Result: v, String: fmt.Sprintf("%g", v)}
	case "deriv":
		d := DerivAt(f, at)
		return ToolResponse{Result: d, String: fmt.Sprintf("%g", d)}
	case "tangent":
		r := f(Var(at))
		return ToolResponse{
			Result: map[string]float64{"value": r.Val, "deriv": r.Der},
			String: r.String(),
		}
	}
	return ToolResponse{Error: "unknown tool: " + req.Tool}
}

// MCPToolSpec returns the tool schema for agent registration.
func MCPToolSpec() string {
	exprParam := map[string]interface{}{
		"type":        "object",
		"description": "JSON expression tree: num, var, add, sub, mul, neg, func",
	}
	params := map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"expr": exprParam,
			"var":  map[string]interface{}{"type": "string", "description": "name of the free variable"},
			"at":   map[string]interface{}{"type": "number", "description": "evaluation point"},
		},
		"required": []string{"expr", "var", "at"},
	}
	spec := map[string]interface{}{
		"tools": []map[string]interface{}{
			{"name": "eval", "description": "Evaluate the expression at a point", "parameters": params},
			{"name": "deriv", "description": "Evaluate the exact derivative at a point (forward-mode AD)", "parameters": params},
			{"name": "tangent", "description": "Evaluate value and derivative together in one pass", "parameters": params},
		},
	}
	b, _ := json.Marshal(spec)
	return string(b)
}
