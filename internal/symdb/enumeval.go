package symdb

// evaluateEnums computes enumerator values in declaration order. A value
// is the previous value plus one unless an initializer is present; the
// initializer folds only when every referenced sub-expression is itself a
// known constant, otherwise the enumerator stays "value unknown".
func (b *builder) evaluateEnums() {
	for _, t := range b.db.types[1:] {
		if !t.IsEnum() {
			continue
		}
		scope := b.db.Scope(t.Scope)
		if scope == nil {
			continue
		}
		prevKnown := true
		var prev int64 = -1
		for _, e := range t.Enumerators {
			if e.Start != nil {
				if val, ok := b.foldConstExpr(e.Start, e.End, scope); ok {
					e.Value = val
					e.ValueKnown = true
				}
			} else if prevKnown {
				e.Value = prev + 1
				e.ValueKnown = true
			}
			prevKnown = e.ValueKnown
			prev = e.Value
		}
	}
}

// foldDimensions resolves array dimension sizes once enumerators and const
// variables are available, so sizes used elsewhere are numerically known
// where foldable.
func (b *builder) foldDimensions() {
	for _, v := range b.db.variables[1:] {
		scope := b.db.Scope(v.Scope)
		if scope == nil {
			continue
		}
		for i := range v.Dimensions {
			dim := &v.Dimensions[i]
			if dim.Start == nil || dim.Known {
				continue
			}
			if val, ok := b.foldConstExpr(dim.Start, dim.End, scope); ok {
				dim.Known = true
				dim.Num = val
			}
		}
	}
}
