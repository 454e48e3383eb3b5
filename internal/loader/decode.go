package loader

import (
	"encoding/json"
	"fmt"

	"github.com/funvibe/pytype/internal/ast"
)

// The moduleDoc family is deliberately the smallest JSON shape that can
// express the constructs this repository's own checker tests build by
// hand: module-level imports, class/function defs with annotated
// parameters, and the handful of statement/expression kinds spec.md's
// examples exercise. A "kind" discriminator field picks the concrete Go
// type; anything else is rejected rather than silently dropped, so a
// malformed fixture fails loudly instead of analyzing an empty module.

type moduleDoc struct {
	Body []json.RawMessage `json:"body"`
}

type stmtHeader struct {
	Kind string `json:"kind"`
}

type exprHeader struct {
	Kind string `json:"kind"`
}

type paramDoc struct {
	Name       string          `json:"name"`
	Annotation json.RawMessage `json:"annotation,omitempty"`
	Default    json.RawMessage `json:"default,omitempty"`
	KeywordOnly bool           `json:"keywordOnly,omitempty"`
}

func decodeStatements(raw []json.RawMessage) ([]ast.Statement, error) {
	out := make([]ast.Statement, 0, len(raw))
	for _, r := range raw {
		s, err := decodeStatement(r)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func decodeStatement(raw json.RawMessage) (ast.Statement, error) {
	var h stmtHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	switch h.Kind {
	case "import":
		var doc struct {
			Names []struct {
				Path  []string `json:"path"`
				Alias string   `json:"alias"`
			} `json:"names"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		names := make([]ast.ImportAlias, 0, len(doc.Names))
		for _, n := range doc.Names {
			names = append(names, ast.ImportAlias{Path: n.Path, Alias: n.Alias})
		}
		return &ast.Import{Names: names}, nil

	case "importFrom":
		var doc struct {
			Module string `json:"module"`
			Names  []struct {
				Path  []string `json:"path"`
				Alias string   `json:"alias"`
			} `json:"names"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		names := make([]ast.ImportAlias, 0, len(doc.Names))
		for _, n := range doc.Names {
			names = append(names, ast.ImportAlias{Path: n.Path, Alias: n.Alias})
		}
		return &ast.ImportFrom{Module: doc.Module, Names: names}, nil

	case "classDef":
		var doc struct {
			Name       string            `json:"name"`
			Bases      []json.RawMessage `json:"bases"`
			Decorators []json.RawMessage `json:"decorators,omitempty"`
			Body       []json.RawMessage `json:"body"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		bases, err := decodeExpressions(doc.Bases)
		if err != nil {
			return nil, err
		}
		decorators, err := decodeDecorators(doc.Decorators)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(doc.Body)
		if err != nil {
			return nil, err
		}
		return &ast.ClassDef{Name: doc.Name, Bases: bases, Decorators: decorators, Body: body}, nil

	case "functionDef":
		var doc struct {
			Name       string          `json:"name"`
			Params     []paramDoc      `json:"params"`
			ReturnAnnot json.RawMessage `json:"returnAnnotation,omitempty"`
			Body       []json.RawMessage `json:"body"`
			Decorators []json.RawMessage `json:"decorators,omitempty"`
			IsAsync    bool            `json:"isAsync,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		params, err := decodeParams(doc.Params)
		if err != nil {
			return nil, err
		}
		returnAnnot, err := decodeOptionalExpression(doc.ReturnAnnot)
		if err != nil {
			return nil, err
		}
		decorators, err := decodeDecorators(doc.Decorators)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(doc.Body)
		if err != nil {
			return nil, err
		}
		return &ast.FunctionDef{Name: doc.Name, Params: params, ReturnAnnot: returnAnnot, Body: body, Decorators: decorators, IsAsync: doc.IsAsync}, nil

	case "raise":
		var doc struct {
			Exception json.RawMessage `json:"exception,omitempty"`
			Cause     json.RawMessage `json:"cause,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		exc, err := decodeOptionalExpression(doc.Exception)
		if err != nil {
			return nil, err
		}
		cause, err := decodeOptionalExpression(doc.Cause)
		if err != nil {
			return nil, err
		}
		return &ast.Raise{Exception: exc, Cause: cause}, nil

	case "return":
		var doc struct {
			Value json.RawMessage `json:"value,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		v, err := decodeOptionalExpression(doc.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Return{Value: v}, nil

	case "assign":
		var doc struct {
			Targets []json.RawMessage `json:"targets"`
			Value   json.RawMessage   `json:"value"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		targets, err := decodeExpressions(doc.Targets)
		if err != nil {
			return nil, err
		}
		value, err := decodeExpression(doc.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Targets: targets, Value: value}, nil

	case "annAssign":
		var doc struct {
			Target     json.RawMessage `json:"target"`
			Annotation json.RawMessage `json:"annotation"`
			Value      json.RawMessage `json:"value,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		target, err := decodeExpression(doc.Target)
		if err != nil {
			return nil, err
		}
		annotation, err := decodeExpression(doc.Annotation)
		if err != nil {
			return nil, err
		}
		value, err := decodeOptionalExpression(doc.Value)
		if err != nil {
			return nil, err
		}
		return &ast.AnnAssign{Target: target, Annotation: annotation, Value: value}, nil

	case "if":
		var doc struct {
			Condition json.RawMessage   `json:"condition"`
			Body      []json.RawMessage `json:"body"`
			OrElse    []json.RawMessage `json:"orelse,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		cond, err := decodeExpression(doc.Condition)
		if err != nil {
			return nil, err
		}
		body, err := decodeStatements(doc.Body)
		if err != nil {
			return nil, err
		}
		orElse, err := decodeStatements(doc.OrElse)
		if err != nil {
			return nil, err
		}
		return &ast.If{Condition: cond, Body: body, OrElse: orElse}, nil

	case "expressionStatement":
		var doc struct {
			Expression json.RawMessage `json:"expression"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		expr, err := decodeExpression(doc.Expression)
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{Expression: expr}, nil

	default:
		return nil, fmt.Errorf("unrecognized statement kind %q", h.Kind)
	}
}

func decodeDecorators(raw []json.RawMessage) ([]ast.Decorator, error) {
	out := make([]ast.Decorator, 0, len(raw))
	for _, r := range raw {
		expr, err := decodeExpression(r)
		if err != nil {
			return nil, err
		}
		out = append(out, ast.Decorator{Expression: expr})
	}
	return out, nil
}

func decodeParams(docs []paramDoc) ([]*ast.Param, error) {
	out := make([]*ast.Param, 0, len(docs))
	for _, d := range docs {
		annotation, err := decodeOptionalExpression(d.Annotation)
		if err != nil {
			return nil, err
		}
		def, err := decodeOptionalExpression(d.Default)
		if err != nil {
			return nil, err
		}
		out = append(out, &ast.Param{Name: d.Name, Annotation: annotation, Default: def, KeywordOnly: d.KeywordOnly})
	}
	return out, nil
}

func decodeOptionalExpression(raw json.RawMessage) (ast.Expression, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeExpression(raw)
}

func decodeExpressions(raw []json.RawMessage) ([]ast.Expression, error) {
	out := make([]ast.Expression, 0, len(raw))
	for _, r := range raw {
		e, err := decodeExpression(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func decodeExpression(raw json.RawMessage) (ast.Expression, error) {
	var h exprHeader
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	switch h.Kind {
	case "name":
		var doc struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return &ast.Name{Value: doc.Value}, nil

	case "member":
		var doc struct {
			Left   json.RawMessage `json:"left"`
			Member string          `json:"member"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		left, err := decodeExpression(doc.Left)
		if err != nil {
			return nil, err
		}
		return &ast.MemberAccess{Left: left, Member: doc.Member}, nil

	case "call":
		var doc struct {
			Function  json.RawMessage   `json:"function"`
			Arguments []json.RawMessage `json:"arguments,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		fn, err := decodeExpression(doc.Function)
		if err != nil {
			return nil, err
		}
		args, err := decodeExpressions(doc.Arguments)
		if err != nil {
			return nil, err
		}
		return &ast.Call{Function: fn, Arguments: args}, nil

	case "constant":
		var doc struct {
			ConstKind string `json:"constKind"`
			Str       string `json:"str,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		kind, err := parseConstKind(doc.ConstKind)
		if err != nil {
			return nil, err
		}
		return &ast.Constant{Kind: kind, Str: doc.Str}, nil

	case "stringLiteral":
		var doc struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		return &ast.StringList{Value: doc.Value}, nil

	case "binOp":
		var doc struct {
			Left  json.RawMessage `json:"left"`
			Op    string          `json:"op"`
			Right json.RawMessage `json:"right"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		left, err := decodeExpression(doc.Left)
		if err != nil {
			return nil, err
		}
		right, err := decodeExpression(doc.Right)
		if err != nil {
			return nil, err
		}
		return &ast.BinOp{Left: left, Op: doc.Op, Right: right}, nil

	case "index":
		var doc struct {
			Left  json.RawMessage `json:"left"`
			Index json.RawMessage `json:"index"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		left, err := decodeExpression(doc.Left)
		if err != nil {
			return nil, err
		}
		index, err := decodeExpression(doc.Index)
		if err != nil {
			return nil, err
		}
		return &ast.IndexExpr{Left: left, Index: index}, nil

	case "yield":
		var doc struct {
			Value json.RawMessage `json:"value,omitempty"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		value, err := decodeOptionalExpression(doc.Value)
		if err != nil {
			return nil, err
		}
		return &ast.Yield{Value: value}, nil

	case "yieldFrom":
		var doc struct {
			Iterable json.RawMessage `json:"iterable"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		iterable, err := decodeExpression(doc.Iterable)
		if err != nil {
			return nil, err
		}
		return &ast.YieldFrom{Iterable: iterable}, nil

	default:
		return nil, fmt.Errorf("unrecognized expression kind %q", h.Kind)
	}
}

func parseConstKind(s string) (ast.ConstantKind, error) {
	switch s {
	case "int":
		return ast.ConstInt, nil
	case "float":
		return ast.ConstFloat, nil
	case "bool":
		return ast.ConstBool, nil
	case "none":
		return ast.ConstNone, nil
	case "str":
		return ast.ConstStr, nil
	case "ellipsis":
		return ast.ConstEllipsis, nil
	default:
		return 0, fmt.Errorf("unrecognized constant kind %q", s)
	}
}
