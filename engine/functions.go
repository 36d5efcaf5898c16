package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cqsql/cq/ast"
	"github.com/cqsql/cq/table"
	"github.com/cqsql/cq/value"
)

type scalarFunc func(args []value.Value) value.Value

// scalarFuncs is the case-insensitive scalar function dispatch table,
// built at init like the token package's keyword lookup map.
var scalarFuncs map[string]scalarFunc

func init() {
	scalarFuncs = map[string]scalarFunc{
		"CONCAT":    fnConcat,
		"LOWER":     fnLower,
		"UPPER":     fnUpper,
		"LENGTH":    fnLength,
		"SUBSTRING": fnSubstring,
		"REPLACE":   fnReplace,
		"COALESCE":  fnCoalesce,
		"POWER":     fnPower,
		"SQRT":      fnSqrt,
		"CEIL":      fnCeil,
		"FLOOR":     fnFloor,
		"ROUND":     fnRound,
		"ABS":       fnAbs,
		"EXP":       fnExp,
		"LN":        fnLn,
		"LOG":       fnLn,
		"MOD":       fnMod,
	}
}

// aggregateNames is the set of aggregate function names, consulted by
// the grouping, window, and result-builder stages to tell an aggregate
// call from a scalar one.
var aggregateNames = map[string]bool{
	"COUNT": true, "SUM": true, "AVG": true, "MIN": true, "MAX": true,
	"STDDEV": true, "STDDEV_POP": true, "MEDIAN": true,
}

// windowNames is the set of ranking/offset function names usable only
// inside OVER(...); cumulative aggregates reuse aggregateNames instead.
var windowNames = map[string]bool{
	"ROW_NUMBER": true, "RANK": true, "DENSE_RANK": true, "LAG": true, "LEAD": true,
}

func (ctx *Context) evalFuncCall(fc *ast.FuncCall, cur *table.Table, row table.Row) (value.Value, error) {
	args := make([]value.Value, 0, len(fc.Args))
	for _, a := range fc.Args {
		if _, ok := a.(*ast.Star); ok {
			continue
		}
		v, err := ctx.Evaluate(a, cur, row)
		if err != nil {
			return value.NewNull(), err
		}
		args = append(args, v)
	}

	name := strings.ToUpper(fc.Name)
	if fn, ok := scalarFuncs[name]; ok {
		return fn(args), nil
	}
	if aggregateNames[name] {
		addDiag(&ctx.Diags, DiagUnsupportedOperand, "aggregate function %s used outside an aggregate context", fc.Name)
		return value.NewNull(), nil
	}
	if windowNames[name] {
		addDiag(&ctx.Diags, DiagWindowOutsideSelect, "window function %s requires an OVER clause", fc.Name)
		return value.NewNull(), nil
	}
	return value.NewNull(), ErrEvaluation.New("unknown function " + fc.Name)
}

func fnConcat(args []value.Value) value.Value {
	var b strings.Builder
	for _, a := range args {
		switch a.Kind {
		case value.Integer:
			fmt.Fprintf(&b, "%d", a.I)
		case value.Double:
			fmt.Fprintf(&b, "%.2f", a.F)
		case value.String:
			b.WriteString(a.S)
		}
	}
	return value.NewString(b.String())
}

func fnLower(args []value.Value) value.Value {
	if len(args) != 1 || args[0].Kind != value.String {
		return value.NewNull()
	}
	return value.NewString(strings.ToLower(args[0].S))
}

func fnUpper(args []value.Value) value.Value {
	if len(args) != 1 || args[0].Kind != value.String {
		return value.NewNull()
	}
	return value.NewString(strings.ToUpper(args[0].S))
}

func fnLength(args []value.Value) value.Value {
	if len(args) != 1 || args[0].Kind != value.String {
		return value.NewNull()
	}
	return value.NewInt(int64(len(args[0].S)))
}

func fnSubstring(args []value.Value) value.Value {
	if len(args) < 2 || args[0].Kind != value.String {
		return value.NewNull()
	}
	s := args[0].S
	start, ok := args[1].AsFloat()
	if !ok {
		return value.NewNull()
	}
	startIdx := int(start) - 1
	if startIdx < 0 {
		startIdx = 0
	}
	if startIdx > len(s) {
		startIdx = len(s)
	}
	end := len(s)
	if len(args) >= 3 {
		if l, ok := args[2].AsFloat(); ok {
			end = startIdx + int(l)
			if end > len(s) {
				end = len(s)
			}
			if end < startIdx {
				end = startIdx
			}
		}
	}
	return value.NewString(s[startIdx:end])
}

func fnReplace(args []value.Value) value.Value {
	if len(args) != 3 {
		return value.NewNull()
	}
	if args[0].Kind != value.String || args[1].Kind != value.String || args[2].Kind != value.String {
		return value.NewNull()
	}
	if args[1].S == "" {
		return value.NewString(args[0].S)
	}
	return value.NewString(strings.ReplaceAll(args[0].S, args[1].S, args[2].S))
}

func fnCoalesce(args []value.Value) value.Value {
	for _, a := range args {
		if !a.IsNull() {
			return a
		}
	}
	return value.NewNull()
}

func fnPower(args []value.Value) value.Value {
	if len(args) != 2 {
		return value.NewNull()
	}
	b, ok1 := args[0].AsFloat()
	e, ok2 := args[1].AsFloat()
	if !ok1 || !ok2 {
		return value.NewNull()
	}
	return value.NewDouble(math.Pow(b, e))
}

func fnSqrt(args []value.Value) value.Value {
	if len(args) != 1 {
		return value.NewNull()
	}
	f, ok := args[0].AsFloat()
	if !ok || f < 0 {
		return value.NewNull()
	}
	return value.NewDouble(math.Sqrt(f))
}

func fnCeil(args []value.Value) value.Value {
	if len(args) != 1 {
		return value.NewNull()
	}
	switch args[0].Kind {
	case value.Integer:
		return args[0]
	case value.Double:
		return value.NewDouble(math.Ceil(args[0].F))
	default:
		return value.NewNull()
	}
}

func fnFloor(args []value.Value) value.Value {
	if len(args) != 1 {
		return value.NewNull()
	}
	switch args[0].Kind {
	case value.Integer:
		return args[0]
	case value.Double:
		return value.NewDouble(math.Floor(args[0].F))
	default:
		return value.NewNull()
	}
}

func fnRound(args []value.Value) value.Value {
	if len(args) < 1 {
		return value.NewNull()
	}
	f, ok := args[0].AsFloat()
	if !ok {
		return value.NewNull()
	}
	decimals := 0
	if len(args) >= 2 {
		if d, ok := args[1].AsFloat(); ok {
			decimals = int(d)
		}
	}
	mult := math.Pow(10, float64(decimals))
	r := math.Round(f*mult) / mult
	if decimals == 0 && (args[0].Kind == value.Integer || r == math.Trunc(r)) {
		return value.NewInt(int64(r))
	}
	return value.NewDouble(r)
}

func fnAbs(args []value.Value) value.Value {
	if len(args) != 1 {
		return value.NewNull()
	}
	switch args[0].Kind {
	case value.Integer:
		i := args[0].I
		if i < 0 {
			i = -i
		}
		return value.NewInt(i)
	case value.Double:
		return value.NewDouble(math.Abs(args[0].F))
	default:
		return value.NewNull()
	}
}

func fnExp(args []value.Value) value.Value {
	if len(args) != 1 {
		return value.NewNull()
	}
	f, ok := args[0].AsFloat()
	if !ok {
		return value.NewNull()
	}
	return value.NewDouble(math.Exp(f))
}

func fnLn(args []value.Value) value.Value {
	if len(args) != 1 {
		return value.NewNull()
	}
	f, ok := args[0].AsFloat()
	if !ok || f <= 0 {
		return value.NewNull()
	}
	return value.NewDouble(math.Log(f))
}

func fnMod(args []value.Value) value.Value {
	if len(args) != 2 {
		return value.NewNull()
	}
	a, b := args[0], args[1]
	if a.Kind == value.Integer && b.Kind == value.Integer {
		if b.I == 0 {
			return value.NewNull()
		}
		return value.NewInt(a.I % b.I)
	}
	af, ok1 := a.AsFloat()
	bf, ok2 := b.AsFloat()
	if !ok1 || !ok2 || bf == 0 {
		return value.NewNull()
	}
	return value.NewDouble(modFloat(af, bf))
}

// AggregateValue computes one aggregate over colValues, the set of
// per-row cell values for the aggregated column (already gathered by
// the caller from a group's or window frame's rows). COUNT ignores the
// cell content entirely, nulls included, so COUNT(*) and COUNT(col)
// produce the same row count.
func AggregateValue(name string, colValues []value.Value) value.Value {
	switch strings.ToUpper(name) {
	case "COUNT":
		return value.NewInt(int64(len(colValues)))
	case "SUM":
		sum, count, isInt := sumNumeric(colValues)
		if count == 0 {
			return value.NewDouble(0.0)
		}
		if isInt {
			return value.NewInt(int64(sum))
		}
		return value.NewDouble(sum)
	case "AVG":
		sum, count, _ := sumNumeric(colValues)
		if count == 0 {
			return value.NewDouble(0.0)
		}
		return value.NewDouble(sum / float64(count))
	case "MIN":
		return extremeValue(colValues, -1)
	case "MAX":
		return extremeValue(colValues, 1)
	case "STDDEV", "STDDEV_POP":
		return stddevPop(colValues)
	case "MEDIAN":
		return median(colValues)
	default:
		return value.NewNull()
	}
}

func sumNumeric(values []value.Value) (sum float64, count int, isInt bool) {
	isInt = true
	for _, v := range values {
		switch v.Kind {
		case value.Integer:
			sum += float64(v.I)
			count++
		case value.Double:
			sum += v.F
			count++
			isInt = false
		}
	}
	return
}

func extremeValue(values []value.Value, dir int) value.Value {
	var best value.Value
	has := false
	for _, v := range values {
		if v.IsNull() {
			continue
		}
		if !has {
			best = v
			has = true
			continue
		}
		cmp := value.Compare(v, best)
		if (dir < 0 && cmp < 0) || (dir > 0 && cmp > 0) {
			best = v
		}
	}
	if !has {
		return value.NewNull()
	}
	return best
}

func stddevPop(values []value.Value) value.Value {
	var nums []float64
	for _, v := range values {
		if f, ok := v.AsFloat(); ok {
			nums = append(nums, f)
		}
	}
	n := len(nums)
	if n == 0 {
		return value.NewDouble(0.0)
	}
	mean := 0.0
	for _, f := range nums {
		mean += f
	}
	mean /= float64(n)
	variance := 0.0
	for _, f := range nums {
		d := f - mean
		variance += d * d
	}
	variance /= float64(n)
	return value.NewDouble(math.Sqrt(variance))
}

func median(values []value.Value) value.Value {
	var nums []float64
	for _, v := range values {
		if f, ok := v.AsFloat(); ok {
			nums = append(nums, f)
		}
	}
	if len(nums) == 0 {
		return value.NewNull()
	}
	sort.Float64s(nums)
	n := len(nums)
	if n%2 == 1 {
		return value.NewDouble(nums[n/2])
	}
	return value.NewDouble((nums[n/2-1] + nums[n/2]) / 2)
}
