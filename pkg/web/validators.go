package web

import "strconv"

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// ParsePositiveInt parses a base 10 integer that must be greater than zero.
func ParsePositiveInt(value string) (int64, bool) {
	return parseValidate(value, gt(0))
}

func parseValidate(value string, pValidator ParamValidator) (int64, bool) {
	if value == "" {
		return 0, false
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil || !pValidator(intValue) {
		return 0, false
	}
	return intValue, true
}
