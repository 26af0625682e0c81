package rpc

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Returns the integer value of an argument. Go integers, whole JSON numbers and digit strings are accepted.
func (a Args) Int(name string) (int, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: '%s' is required", ErrInvalidArgument, name)
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: '%s' should be an integer, got %v", ErrInvalidArgument, name, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: '%s' should be an integer: %s", ErrInvalidArgument, name, err.Error())
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: '%s' should be an integer: %s", ErrInvalidArgument, name, err.Error())
		}
		return i, nil
	}

	return 0, fmt.Errorf("%w: '%s' should be an integer, got %T", ErrInvalidArgument, name, v)
}

// Returns the string value of an optional argument, and whether it was set.
func (a Args) String(name string) (string, bool, error) {
	v, ok := a[name]
	if !ok || v == nil {
		return "", false, nil
	}

	s, ok := v.(string)
	if !ok {
		return "", false, fmt.Errorf("%w: '%s' should be a string, got %T", ErrInvalidArgument, name, v)
	}

	return s, true, nil
}

// Returns a copy of the arguments without the given names.
func (a Args) Without(names ...string) Args {
	out := make(Args, len(a))
	for k, v := range a {
		out[k] = v
	}
	for _, n := range names {
		delete(out, n)
	}
	return out
}
