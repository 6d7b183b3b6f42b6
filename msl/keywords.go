package msl

// mslKeywords contains MSL/C++14 reserved words that cannot be used as
// identifiers, plus the handful of MSL standard-library / generated
// function names this backend itself relies on (e.g. "main", "saturate")
// that would otherwise shadow the caller's identifiers of the same name.
// Grounded on glsl.glslKeywords, adapted to MSL's C++-flavored keyword set
// (spec.md §4.6 "Name sanitization").
var mslKeywords = map[string]struct{}{
	// C++ keywords MSL inherits
	"alignas": {}, "alignof": {}, "and": {}, "and_eq": {}, "asm": {},
	"auto": {}, "bitand": {}, "bitor": {}, "bool": {}, "break": {},
	"case": {}, "catch": {}, "char": {}, "class": {}, "compl": {},
	"const": {}, "constexpr": {}, "const_cast": {}, "continue": {},
	"decltype": {}, "default": {}, "delete": {}, "do": {}, "double": {},
	"dynamic_cast": {}, "else": {}, "enum": {}, "explicit": {}, "export": {},
	"extern": {}, "false": {}, "float": {}, "for": {}, "friend": {},
	"goto": {}, "if": {}, "inline": {}, "int": {}, "long": {}, "mutable": {},
	"namespace": {}, "new": {}, "noexcept": {}, "not": {}, "not_eq": {},
	"nullptr": {}, "operator": {}, "or": {}, "or_eq": {}, "private": {},
	"protected": {}, "public": {}, "register": {}, "reinterpret_cast": {},
	"return": {}, "short": {}, "signed": {}, "sizeof": {}, "static": {},
	"static_assert": {}, "static_cast": {}, "struct": {}, "switch": {},
	"template": {}, "this": {}, "thread_local": {}, "throw": {}, "true": {},
	"try": {}, "typedef": {}, "typeid": {}, "typename": {}, "union": {},
	"unsigned": {}, "using": {}, "virtual": {}, "void": {}, "volatile": {},
	"wchar_t": {}, "while": {}, "xor": {}, "xor_eq": {},

	// MSL-specific address-space and attribute keywords
	"kernel": {}, "vertex": {}, "fragment": {}, "constant": {},
	"device": {}, "threadgroup": {}, "thread": {}, "half": {},

	// Restricted MSL standard-library / generated function names that
	// would collide with generated code.
	"main": {}, "saturate": {}, "discard_fragment": {},
}

// isMSLKeyword reports whether name is a reserved word or restricted
// library name that the sanitizer must rename.
func isMSLKeyword(name string) bool {
	_, ok := mslKeywords[name]
	return ok
}

// sanitizeIdent rewrites name so it is a legal, non-colliding MSL
// identifier:
//   - a name matching a keyword/restricted name gets a "0" suffix.
//   - a name beginning with "_<digit>" is prefixed with pfx (spec.md §4.2
//     "prepend m if the name begins with underscore-then-digit" and §4.6
//     "names beginning with _<digit> are prefixed with a caller-supplied
//     character").
func sanitizeIdent(name, pfx string) string {
	if name == "" {
		return name
	}
	if len(name) >= 2 && name[0] == '_' && name[1] >= '0' && name[1] <= '9' {
		name = pfx + name
	}
	if isMSLKeyword(name) {
		name += "0"
	}
	return name
}
