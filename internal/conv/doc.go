// Package conv provides bounds-checked integer conversions for values that
// end up in fixed-width file headers.
package conv
