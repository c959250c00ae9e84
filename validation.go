package main

import "unicode"

// isValidTableName accepts plain identifiers only, since the table name is
// spliced into SQL and PostgREST paths.
func isValidTableName(name string) bool {
	if name == "" || len(name) > 63 {
		return false
	}

	for i, r := range name {
		if r == '_' {
			continue
		}
		if unicode.IsDigit(r) && i > 0 {
			continue
		}
		if r < unicode.MaxASCII && unicode.IsLetter(r) {
			continue
		}
		return false
	}

	return true
}
