package domain

// CommandVars returns the variable names referenced by a command template, in
// order of first reference. Both "$name" and "${name}" forms count; "$$" and
// the "$ ", "$:" escapes do not reference a variable.
func CommandVars(command string) []string {
	var names []string
	seen := make(map[string]bool)

	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	for i := 0; i < len(command); i++ {
		if command[i] != '$' || i+1 == len(command) {
			continue
		}
		next := command[i+1]
		switch {
		case next == '$' || next == ' ' || next == ':' || next == '\n':
			i++
		case next == '{':
			j := i + 2
			for j < len(command) && command[j] != '}' {
				j++
			}
			add(command[i+2:j])
			i = j
		default:
			j := i + 1
			for j < len(command) && isVarChar(command[j]) {
				j++
			}
			add(command[i+1 : j])
			i = j - 1
		}
	}
	return names
}

// isVarChar reports whether c may appear in a simple (unbraced) variable
// reference. Ninja allows letters, digits, underscore, dash and dot.
func isVarChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '_' || c == '-' || c == '.':
		return true
	}
	return false
}
