package document

import "cmp"

// CompareField returns a comparator ordering documents by a field.
//
// Numbers, strings and bools compare by value. Documents missing the field
// sort first, and values of different kinds sort as bool < number < string.
func CompareField(field string) func(a, b Document) int {
	return func(a, b Document) int {
		return compareValues(a[field], b[field])
	}
}

func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankBool:
		return cmp.Compare(boolInt(a.(bool)), boolInt(b.(bool)))
	case rankNumber:
		fa, _ := number(a)
		fb, _ := number(b)
		return cmp.Compare(fa, fb)
	case rankString:
		return cmp.Compare(a.(string), b.(string))
	}
	return 0
}

const (
	rankMissing = iota
	rankBool
	rankNumber
	rankString
	rankOther
)

func rank(v any) int {
	switch v.(type) {
	case nil:
		return rankMissing
	case bool:
		return rankBool
	case string:
		return rankString
	}
	if _, ok := number(v); ok {
		return rankNumber
	}
	return rankOther
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
