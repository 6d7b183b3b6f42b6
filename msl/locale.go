package msl

// withClassicLocale brackets f with the scoped classic-locale acquisition
// named in spec.md §9 design note. Go's strconv/fmt numeric formatting is
// always locale-independent ("." as the decimal separator, no thousands
// grouping), so there is nothing to guard against today; this wrapper
// exists so the one place a future cgo-based locale dependency would need
// to install itself is already load-bearing rather than invented later.
func withClassicLocale(f func()) {
	f()
}
