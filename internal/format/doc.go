// Package format renders store result sets for a terminal.
//
// Each Formatter is stateless; the same value can render any number of
// result sets. Formatters are looked up by name:
//
//	aligned  columns padded with spaces
//	auto     aligned, with repeated leading values grouped when it saves space
//	csv      comma separated
//	null     NUL separated, for xargs -0 and friends
//	table    bordered table
//	yaml     one mapping per row
//
// A nil result set renders nothing.
package format
