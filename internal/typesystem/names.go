package typesystem

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"github.com/funvibe/objmodel/internal/config"
)

// FoldName returns the case-insensitive lookup key of a class or method name.
// Field and constant names are case-sensitive and are never folded.
func FoldName(name string) string {
	if isLowerASCII(name) {
		return name
	}
	// A Caser is stateful, so each call gets its own.
	return cases.Fold().String(name)
}

func isLowerASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x80 || (c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// IsAllowedName reports whether name is a valid guest field, method or class name.
func IsAllowedName(name string) bool {
	return name != "" && !strings.ContainsAny(name, config.DisallowedNameChars)
}

// IsRuntimeFieldsSlot reports whether a compiler-generated field holds the
// runtime field store of its instance.
func IsRuntimeFieldsSlot(name string, access Access, static bool) bool {
	return slices.Contains(config.RuntimeFieldsSlotNames, name) && access != AccessPublic && !static
}

// IsContextField reports whether a compiler-generated field holds the
// construction context of its instance.
func IsContextField(name string, access Access, static bool) bool {
	return !static && access == AccessProtected && slices.Contains(config.ContextFieldNames, name)
}
