package value

// Pair is a single object field.
type Pair struct {
	Key   string
	Value Value
}

// Object is a string-keyed mapping that preserves insertion order.
type Object struct {
	pairs []Pair
	index map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// ObjectOf builds an object from pairs in order. Repeated keys follow Set
// semantics.
func ObjectOf(pairs ...Pair) *Object {
	o := &Object{
		pairs: make([]Pair, 0, len(pairs)),
		index: make(map[string]int, len(pairs)),
	}
	for _, p := range pairs {
		o.Set(p.Key, p.Value)
	}
	return o
}

// Set stores v under key. An existing key keeps its position and takes the
// new value.
func (o *Object) Set(key string, v Value) {
	if o.index == nil {
		o.index = make(map[string]int)
	}
	if i, ok := o.index[key]; ok {
		o.pairs[i].Value = v
		return
	}
	o.index[key] = len(o.pairs)
	o.pairs = append(o.pairs, Pair{Key: key, Value: v})
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Value{}, false
	}
	i, ok := o.index[key]
	if !ok {
		return Value{}, false
	}
	return o.pairs[i].Value, true
}

func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Delete removes key, keeping the order of the remaining fields.
func (o *Object) Delete(key string) bool {
	if o == nil {
		return false
	}
	i, ok := o.index[key]
	if !ok {
		return false
	}
	o.pairs = append(o.pairs[:i], o.pairs[i+1:]...)
	delete(o.index, key)
	for j := i; j < len(o.pairs); j++ {
		o.index[o.pairs[j].Key] = j
	}
	return true
}

func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.pairs)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.pairs))
	for i, p := range o.pairs {
		keys[i] = p.Key
	}
	return keys
}

// Pairs returns the fields in insertion order. The slice must not be modified.
func (o *Object) Pairs() []Pair {
	if o == nil {
		return nil
	}
	return o.pairs
}

// Range calls fn for each field in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, p := range o.pairs {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}
