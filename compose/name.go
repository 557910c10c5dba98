package compose

import "strings"

// ParseName implements the action name grammar from §6.2:
//
//	name = "/" ns "/" [pkg "/"] action     (fully qualified)
//	     | [pkg "/"] action                (unqualified, implicit namespace "_")
//
// An unqualified name with exactly three segments ("ns/pkg/action") is
// itself already a fully qualified name missing only its leading slash.
//
// It returns the fully qualified form, e.g. "foo" -> "/_/foo".
func ParseName(name string) (string, error) {
	if name == "" {
		return "", &InvalidName{Name: name}
	}

	qualified := strings.HasPrefix(name, "/")
	parts := strings.Split(name, "/")

	var prefix string
	if qualified {
		// Leading slash produces a leading empty segment from Split.
		parts = parts[1:]
		switch len(parts) {
		case 2, 3:
			// ns/action or ns/pkg/action: fine.
		default:
			return "", &InvalidName{Name: name}
		}
		prefix = "/"
	} else {
		switch len(parts) {
		case 1, 2:
			prefix = "/_/"
		case 3:
			// Already ns/pkg/action, just missing its leading slash.
			prefix = "/"
		default:
			return "", &InvalidName{Name: name}
		}
	}

	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			return "", &InvalidName{Name: name}
		}
	}

	return prefix + strings.Join(parts, "/"), nil
}
