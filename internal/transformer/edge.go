package transformer

// HasEdgeSpace reports whether s starts or ends with an ASCII space or tab.
// It lets hot paths skip strings.TrimSpace for the common clean case.
func HasEdgeSpace(s string) bool {
	if s == "" {
		return false
	}
	first, last := s[0], s[len(s)-1]
	return first == ' ' || first == '\t' || last == ' ' || last == '\t'
}
