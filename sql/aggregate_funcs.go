package sql

import (
	"github.com/flowsql/flowsql/batch"
)

// Accumulator is the per-group mutable aggregation state spec.md §9 names:
// "a polymorphic trait with update(args...), merge(other), finalize() ->
// Value". Merge is implemented even though Aggregate (operator_aggregate.go)
// never calls it today — spec.md §9: "so the same machinery can be reused
// by an upstream batching collector".
type Accumulator interface {
	Update(args []batch.Value)
	Merge(other Accumulator)
	Finalize() batch.Value
}

// AggregateFunc is one entry in the aggregate registry (spec.md §4.4's
// table of canonical aggregates).
type AggregateFunc struct {
	Name    string
	MinArgs int
	MaxArgs int
	AllowStar bool
	// ResultType computes the finalize() result type given the argument
	// expression's type (ignored for count(*)).
	ResultType func(argType batch.DataType) batch.DataType
	// New constructs a fresh accumulator for one group.
	New func(argType batch.DataType, star bool) Accumulator
}

var aggregateRegistry = map[string]*AggregateFunc{}

func registerAggregate(a *AggregateFunc) {
	aggregateRegistry[a.Name] = a
}

func lookupAggregate(name string) (*AggregateFunc, bool) {
	a, ok := aggregateRegistry[toLowerASCII(name)]
	return a, ok
}

func init() {
	registerAggregate(&AggregateFunc{
		Name: "count", MinArgs: 0, MaxArgs: 1, AllowStar: true,
		ResultType: func(argType batch.DataType) batch.DataType { return batch.Int64Type() },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &countAcc{countAll: star}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "sum", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return batch.WidestNumeric(argType, argType) },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &sumAcc{typ: argType}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "avg", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return batch.Float64Type() },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &avgAcc{}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "min", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return argType },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &extremeAcc{typ: argType, better: func(c int) bool { return c < 0 }}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "max", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return argType },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &extremeAcc{typ: argType, better: func(c int) bool { return c > 0 }}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "first", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return argType },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &firstLastAcc{typ: argType, keepFirst: true}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "last", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return argType },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &firstLastAcc{typ: argType, keepFirst: false}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "collect_list", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return batch.ArrayType(argType) },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &collectAcc{elemType: argType, dropNulls: false, distinct: false}
		},
	})
	registerAggregate(&AggregateFunc{
		Name: "collect_set", MinArgs: 1, MaxArgs: 1,
		ResultType: func(argType batch.DataType) batch.DataType { return batch.ArrayType(argType) },
		New: func(argType batch.DataType, star bool) Accumulator {
			return &collectAcc{elemType: argType, dropNulls: true, distinct: true}
		},
	})
}

// --- count ---------------------------------------------------------------

type countAcc struct {
	countAll bool
	n        int64
}

func (a *countAcc) Update(args []batch.Value) {
	if a.countAll {
		a.n++
		return
	}
	if len(args) > 0 && !args[0].IsNull() {
		a.n++
	}
}
func (a *countAcc) Merge(other Accumulator) { a.n += other.(*countAcc).n }
func (a *countAcc) Finalize() batch.Value   { return batch.Int64(a.n) }

// --- sum -------------------------------------------------------------------

type sumAcc struct {
	typ     batch.DataType
	sum     float64
	isum    int64
	nonNull int
}

func (a *sumAcc) Update(args []batch.Value) {
	v := args[0]
	if v.IsNull() {
		return
	}
	a.nonNull++
	if a.typ.IsFloat() {
		a.sum += v.AsFloat64()
	} else {
		a.isum += v.AsInt64()
	}
}
func (a *sumAcc) Merge(other Accumulator) {
	o := other.(*sumAcc)
	a.sum += o.sum
	a.isum += o.isum
	a.nonNull += o.nonNull
}
func (a *sumAcc) Finalize() batch.Value {
	if a.nonNull == 0 {
		return batch.Null(a.typ)
	}
	if a.typ.IsFloat() {
		if a.typ.Kind == batch.KindFloat32 {
			return batch.Float32Val(float32(a.sum))
		}
		return batch.Float64Val(a.sum)
	}
	if a.typ.Kind == batch.KindInt32 {
		return batch.Int32(int32(a.isum))
	}
	return batch.Int64(a.isum)
}

// --- avg -------------------------------------------------------------------

type avgAcc struct {
	sum float64
	n   int64
}

func (a *avgAcc) Update(args []batch.Value) {
	if args[0].IsNull() {
		return
	}
	a.sum += args[0].AsFloat64()
	a.n++
}
func (a *avgAcc) Merge(other Accumulator) {
	o := other.(*avgAcc)
	a.sum += o.sum
	a.n += o.n
}
func (a *avgAcc) Finalize() batch.Value {
	if a.n == 0 {
		return batch.Null(batch.Float64Type())
	}
	return batch.Float64Val(a.sum / float64(a.n))
}

// --- min/max ---------------------------------------------------------------

type extremeAcc struct {
	typ    batch.DataType
	better func(cmp int) bool
	best   batch.Value
	found  bool
}

func (a *extremeAcc) Update(args []batch.Value) {
	v := args[0]
	if v.IsNull() {
		return
	}
	if !a.found || a.better(compareOrder(v, a.best)) {
		a.best = v
		a.found = true
	}
}
func (a *extremeAcc) Merge(other Accumulator) {
	o := other.(*extremeAcc)
	if o.found {
		a.Update([]batch.Value{o.best})
	}
}
func (a *extremeAcc) Finalize() batch.Value {
	if !a.found {
		return batch.Null(a.typ)
	}
	return a.best
}

// --- first/last --------------------------------------------------------

type firstLastAcc struct {
	typ       batch.DataType
	keepFirst bool
	val       batch.Value
	found     bool
}

func (a *firstLastAcc) Update(args []batch.Value) {
	v := args[0]
	if v.IsNull() {
		return
	}
	if a.keepFirst && a.found {
		return
	}
	a.val = v
	a.found = true
}
func (a *firstLastAcc) Merge(other Accumulator) {
	o := other.(*firstLastAcc)
	if !o.found {
		return
	}
	if a.keepFirst && a.found {
		return
	}
	a.val = o.val
	a.found = true
}
func (a *firstLastAcc) Finalize() batch.Value {
	if !a.found {
		return batch.Null(a.typ)
	}
	return a.val
}

// --- collect_list / collect_set -----------------------------------------

type collectAcc struct {
	elemType  batch.DataType
	dropNulls bool
	distinct  bool
	vals      []batch.Value
}

func (a *collectAcc) Update(args []batch.Value) {
	v := args[0]
	if v.IsNull() {
		if a.dropNulls {
			return
		}
		a.vals = append(a.vals, v)
		return
	}
	if a.distinct {
		for _, existing := range a.vals {
			if existing.Equal(v) {
				return
			}
		}
	}
	a.vals = append(a.vals, v)
}
func (a *collectAcc) Merge(other Accumulator) {
	o := other.(*collectAcc)
	for _, v := range o.vals {
		a.Update([]batch.Value{v})
	}
}
func (a *collectAcc) Finalize() batch.Value {
	return batch.Array(a.elemType, a.vals)
}
