package evaluator

// Unlimited as a Param count consumes arguments for as long as they match.
const Unlimited = -1

// Param is one positional rule: an accepted type set and either an exact
// count or Unlimited.
type Param struct {
	Types []ObjectType
	Count int
}

func (p Param) accepts(obj Object) bool {
	for _, t := range p.Types {
		if obj.Type() == t {
			return true
		}
	}
	return false
}

// ValidateArgs checks args against rules in order. Fixed-count rules need
// exactly Count matching arguments; an Unlimited rule may match none. Every
// argument must be consumed by some rule.
func ValidateArgs(args []Object, rules ...Param) bool {
	i := 0
	for _, rule := range rules {
		if rule.Count == Unlimited {
			for i < len(args) && rule.accepts(args[i]) {
				i++
			}
			continue
		}
		for n := 0; n < rule.Count; n++ {
			if i >= len(args) || !rule.accepts(args[i]) {
				return false
			}
			i++
		}
	}
	return i == len(args)
}

// Types is shorthand for building a type set.
func Types(types ...ObjectType) []ObjectType {
	return types
}
