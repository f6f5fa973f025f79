package analysis

import (
	"fmt"
	"strings"
)

// maxNamedFunctions is how many function names the explanation lists.
const maxNamedFunctions = 3

// countOf formats "N noun", adding an "s" when N > 1.
func countOf(n int, noun string) string {
	if n > 1 {
		return fmt.Sprintf("%d %ss", n, noun)
	}

	return fmt.Sprintf("%d %s", n, noun)
}

func explainJavaScript(acc *accumulator) string {
	st := acc.structure

	subject := "code"
	if len(st.Imports) > 0 {
		subject = "module"
	}

	var b strings.Builder

	fmt.Fprintf(&b, "This %s contains %d lines of executable code", subject, acc.summary.CodeLines)

	if n := len(st.Functions); n > 0 {
		b.WriteString(" and defines " + countOf(n, "function"))

		shown := st.Functions[:min(n, maxNamedFunctions)]
		names := make([]string, len(shown))

		for i, fn := range shown {
			names[i] = fn.Name
		}

		if n <= maxNamedFunctions {
			b.WriteString(": " + strings.Join(names, ", "))
		} else {
			fmt.Fprintf(&b, " including %s and %d more", strings.Join(names, ", "), n-maxNamedFunctions)
		}
	}

	if n := len(st.Variables); n > 0 {
		b.WriteString(". It declares " + countOf(n, "variable"))
	}

	if n := len(st.Loops); n > 0 {
		b.WriteString(" and uses " + countOf(n, "loop"))
	}

	if n := len(st.Conditionals); n > 0 {
		b.WriteString(" with " + countOf(n, "conditional statement"))
	}

	if n := len(st.Imports); n > 0 {
		b.WriteString(". The code imports " + countOf(n, "module"))
	}

	fmt.Fprintf(&b, ". The complexity level is %s.", acc.summary.Complexity)

	return b.String()
}

func explainPython(acc *accumulator) string {
	st := acc.structure

	var b strings.Builder

	fmt.Fprintf(&b, "This Python script contains %d lines of code", acc.summary.CodeLines)

	if n := len(st.Functions); n > 0 {
		b.WriteString(" and defines " + countOf(n, "function"))
	}

	if n := len(st.Loops); n > 0 {
		b.WriteString(" with " + countOf(n, "loop"))
	}

	if n := len(st.Conditionals); n > 0 {
		b.WriteString(" and " + countOf(n, "conditional"))
	}

	fmt.Fprintf(&b, ". The complexity is %s.", acc.summary.Complexity)

	return b.String()
}
