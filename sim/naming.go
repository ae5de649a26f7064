package sim

import (
	"strconv"
	"strings"
)

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// NameMustBeValid panics if the name does not follow the naming convention.
//  1. Names are hierarchical, separated by dots. "SDSim.Bus" is valid,
//     "SDSim.Bus." is not.
//  2. Individual elements must not be empty.
//  3. Elements are capitalized CamelCase.
//  4. Elements in a series use square brackets, as in "Master[2]".
func NameMustBeValid(name string) {
	for _, token := range strings.Split(name, ".") {
		tokenMustBeValid(name, token)
	}
}

func tokenMustBeValid(name, token string) {
	elem := token
	if i := strings.Index(token, "["); i >= 0 {
		elem = token[:i]
		indexMustBeValid(name, token[i:])
	}

	if elem == "" {
		panic("Name " + name + " is not valid: element must not be empty")
	}

	if strings.ContainsAny(elem, "_\"'- ") {
		panic("Name " + name + " is not valid: invalid character in " + elem)
	}

	if elem[0] < 'A' || elem[0] > 'Z' {
		panic("Name " + name + " is not valid: " +
			elem + " must start with a capital letter")
	}
}

func indexMustBeValid(name, indices string) {
	for indices != "" {
		end := strings.Index(indices, "]")
		if indices[0] != '[' || end < 0 {
			panic("Name " + name + " is not valid: bracket must match")
		}

		if _, err := strconv.Atoi(indices[1:end]); err != nil {
			panic("Name " + name + " is not valid: index must be integer")
		}

		indices = indices[end+1:]
	}
}
