package diffcalc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/njchilds90/diffcalc/symbolic"
)

// ============================================================
// Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// HandleToolCall dispatches a JSON tool call. Parameters use the same names
// as Input: function, point, unit, step; sweep also takes steps.
func (c *Calculator) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key string, required bool) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			if required {
				return "", fmt.Errorf("missing param: %s", key)
			}
			return "", nil
		}
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("param %s must be a string", key)
		}
		return s, nil
	}
	getNumber := func(key string) (float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return 0, nil
		}
		n, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("param %s must be a number", key)
		}
		return n, nil
	}
	getInput := func() (Input, error) {
		var in Input
		var err error
		if in.Function, err = getString("function", false); err != nil {
			return in, err
		}
		if in.Point, err = getString("point", false); err != nil {
			return in, err
		}
		unit, err := getString("unit", false)
		if err != nil {
			return in, err
		}
		if in.Unit, err = ParseUnit(unit); err != nil {
			return in, err
		}
		if in.Step, err = getNumber("step"); err != nil {
			return in, err
		}
		return in, nil
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "evaluate":
		in, err := getInput()
		if err != nil {
			return fail(err)
		}
		res := c.Evaluate(ctx, in)
		return ToolResponse{Result: res, LaTeX: res.DerivativeLaTeX, String: FormatReport(res)}

	case "sweep":
		in, err := getInput()
		if err != nil {
			return fail(err)
		}
		steps, err := getNumber("steps")
		if err != nil {
			return fail(err)
		}
		if !(steps <= MaxSweepSteps) {
			return fail(fmt.Errorf("param steps must be at most %d", MaxSweepSteps))
		}
		if steps < 0 {
			steps = 0
		}
		rows, err := c.Sweep(ctx, in, int(steps))
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: rows, String: FormatSweep(rows)}

	case "diff":
		text, err := getString("function", true)
		if err != nil {
			return fail(err)
		}
		fn, err := parseFunction(text, c.opts.MaxInputLength)
		if err != nil {
			return fail(err)
		}
		d := fn.Derivative()
		return ToolResponse{Result: symbolic.Tree(d.Expr()), LaTeX: d.LaTeX(), String: d.String()}

	case "resolve_point":
		in, err := getInput()
		if err != nil {
			return fail(err)
		}
		x, err := resolvePoint(in.Point, in.Unit, c.opts.MaxInputLength)
		if err != nil {
			return fail(err)
		}
		return ToolResponse{Result: x, String: fmt.Sprintf("%g", x)}

	case "tool_spec":
		return ToolResponse{Result: json.RawMessage(ToolSpec())}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of every tool for agent registration.
func ToolSpec() string {
	input := map[string]string{"function": "string", "point": "string", "unit": "string", "step": "number"}
	sweep := map[string]string{"function": "string", "point": "string", "unit": "string", "step": "number", "steps": "integer"}
	tools := []map[string]interface{}{
		ts("evaluate", "Central-difference estimate, exact derivative and absolute error of f at a point", []string{"function", "point", "step"}, input),
		ts("sweep", "Estimate and absolute error for step sizes h, h/10, h/100, ...", []string{"function", "point", "step"}, sweep),
		ts("diff", "Symbolic derivative d/dx of f", []string{"function"}, map[string]string{"function": "string"}),
		ts("resolve_point", "Resolve a point expression (pi allowed) to radians", []string{"point"}, map[string]string{"point": "string", "unit": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
