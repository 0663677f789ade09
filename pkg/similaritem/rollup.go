package similaritem

import "strings"

// NumChangeDescriptions is the number of free-text change description slots.
const NumChangeDescriptions = 10

// RollUpChangeDescriptions concatenates the children's descriptions slot by
// slot, each followed by a blank line, in child order.
func RollUpChangeDescriptions(children [][NumChangeDescriptions]string) [NumChangeDescriptions]string {
	var builders [NumChangeDescriptions]strings.Builder
	for _, child := range children {
		for i, desc := range child {
			builders[i].WriteString(desc)
			builders[i].WriteString("\n\n")
		}
	}

	var out [NumChangeDescriptions]string
	for i := range builders {
		out[i] = builders[i].String()
	}
	return out
}
