package docache

// coalesce returns def when v is the zero value of T - otherwise v.
func coalesce[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// dedupe returns ks with repeats removed, first occurrence wins.
func dedupe(ks []string) []string {
	seen := make(map[string]struct{}, len(ks))
	out := make([]string, 0, len(ks))
	for _, k := range ks {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
