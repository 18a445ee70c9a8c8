package launch

import (
	"slices"
	"strings"
)

// Arguments is an ordered set of --key value options plus the arguments
// that are not options.
type Arguments struct {
	keys   []string
	values map[string]string
	extra  []string
}

// NewArguments returns an empty argument set.
func NewArguments() *Arguments {
	return &Arguments{values: make(map[string]string)}
}

// ParseArguments returns the argument set parsed from args.
func ParseArguments(args []string) *Arguments {
	a := NewArguments()
	a.Parse(args)
	return a
}

// Parse adds args to the set. A --key followed by a value takes that value.
// A --key followed by another --key gets an empty value. A trailing --key
// and everything else become extra arguments.
func (a *Arguments) Parse(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") || i == len(args)-1 {
			a.extra = append(a.extra, arg)
			continue
		}

		value := args[i+1]
		if strings.HasPrefix(value, "--") {
			value = ""
		} else {
			i++
		}
		a.Put(strings.TrimPrefix(arg, "--"), value)
	}
}

// Keys returns the option keys in insertion order.
func (a *Arguments) Keys() []string {
	return slices.Clone(a.keys)
}

// ExtraArgs returns the non-option arguments in order.
func (a *Arguments) ExtraArgs() []string {
	return slices.Clone(a.extra)
}

// ContainsKey reports whether key is set.
func (a *Arguments) ContainsKey(key string) bool {
	_, ok := a.values[key]
	return ok
}

// Get returns the value of key.
func (a *Arguments) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// GetOrDefault returns the value of key, or def if key is not set.
func (a *Arguments) GetOrDefault(key, def string) string {
	if v, ok := a.values[key]; ok {
		return v
	}
	return def
}

// Put sets key to value. A key that is already set keeps its position.
func (a *Arguments) Put(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// AddExtraArg appends a non-option argument.
func (a *Arguments) AddExtraArg(value string) {
	a.extra = append(a.extra, value)
}

// Remove unsets key and returns its previous value.
func (a *Arguments) Remove(key string) (string, bool) {
	v, ok := a.values[key]
	if !ok {
		return "", false
	}
	delete(a.values, key)
	a.keys = slices.DeleteFunc(a.keys, func(k string) bool { return k == key })
	return v, true
}

// Slice renders the set back to command-line form: every option as
// --key value in insertion order, then the extra arguments.
func (a *Arguments) Slice() []string {
	out := make([]string, 0, len(a.keys)*2+len(a.extra))
	for _, k := range a.keys {
		out = append(out, "--"+k, a.values[k])
	}
	return append(out, a.extra...)
}
