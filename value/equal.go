package value

// Equal reports whether a and b are the same tree. Object field order is
// significant. Int and Float never compare equal to each other.
func Equal(a, b Value) bool {
	return equal(a, b, true)
}

// EqualUnordered is Equal with object field order ignored.
func EqualUnordered(a, b Value) bool {
	return equal(a, b, false)
}

func equal(a, b Value, ordered bool) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case NullKind:
		return true
	case BoolKind:
		return a.b == b.b
	case IntKind:
		return a.i == b.i
	case FloatKind:
		return a.f == b.f || (a.f != a.f && b.f != b.f)
	case StringKind:
		return a.s == b.s
	case ArrayKind:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !equal(a.arr[i], b.arr[i], ordered) {
				return false
			}
		}
		return true
	case ObjectKind:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for i, p := range a.obj.pairs {
			if ordered {
				q := b.obj.pairs[i]
				if p.Key != q.Key || !equal(p.Value, q.Value, ordered) {
					return false
				}
				continue
			}
			other, ok := b.obj.Get(p.Key)
			if !ok || !equal(p.Value, other, ordered) {
				return false
			}
		}
		return true
	}
	return false
}
