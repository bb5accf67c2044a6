package validate

import (
	"github.com/whzard/punybuf/internal/errors"
	"github.com/whzard/punybuf/internal/ir"
)

// validateEnum enforces invariant 5: unique variant names, at most one
// @default, a @default variant carries no value and is never @extension,
// and @extension variants (if any) require a @default to exist and must all
// come after it in discriminant order.
func (v *validator) validateEnum(ownerName string, generics []string, variants []*ir.EnumVariant) {
	seen := map[string]*ir.EnumVariant{}
	var defaultVariant *ir.EnumVariant
	var firstExtensionAt = -1

	for i, variant := range variants {
		if prev, ok := seen[variant.Name]; ok {
			v.add(errors.Newf(variant.Span, "duplicate enum variant name %q (previously declared at %s)", variant.Name, prev.Span))
			continue
		}
		seen[variant.Name] = variant

		if variant.Value != nil {
			v.validateRef(variant.Value, ownerName, generics)
		}

		isDefault := variant.Attrs.Has("default")
		isExt := variant.Attrs.Has("extension")

		if isDefault {
			if defaultVariant != nil {
				v.add(errors.Newf(variant.Span, "an enum may have at most one @default variant (previous at %s)", defaultVariant.Span))
			}
			defaultVariant = variant
			if variant.Value != nil {
				v.add(errors.Newf(variant.Span, "a @default variant may not carry a value"))
			}
			if isExt {
				v.add(errors.Newf(variant.Span, "a variant may not be both @default and @extension"))
			}
		}

		if isExt {
			if defaultVariant == nil {
				v.add(errors.Newf(variant.Span, "@extension variant %q requires the enum to have a @default variant", variant.Name))
			}
			if firstExtensionAt == -1 {
				firstExtensionAt = i
			}
		} else if firstExtensionAt != -1 {
			v.add(errors.Newf(variant.Span, "non-extension variant %q may not follow an @extension variant", variant.Name))
		}
	}
}
