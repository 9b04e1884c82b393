package repository

import (
	"fmt"
	"strings"
)

// inPlaceholders renders "$start, $start+1, ..." for n values, for building
// NOT IN clauses over id lists. database/sql has no array binding here.
func inPlaceholders(start, n int) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, fmt.Sprintf("$%d", start+i))
	}
	return strings.Join(parts, ", ")
}

func stringArgs(args []interface{}, values []string) []interface{} {
	for _, v := range values {
		args = append(args, v)
	}
	return args
}
