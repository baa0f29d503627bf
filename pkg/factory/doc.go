// Package factory maps provider names onto client constructors. Each
// provider package registers itself here; callers create clients by
// name without importing every vendor package themselves.
//
// Names are matched case-insensitively and a small alias table maps
// alternate spellings and localized display names onto the canonical
// identifiers.
package factory
