package compare

import "sarifsort/internal/sarif"

// PropertyValue orders tagged property values by their serialized form,
// then by kind. The kind only breaks ties between values whose serialized
// text is identical.
var PropertyValue = Chain(
	By(func(v sarif.PropertyValue) string { return v.Normalized().Serialized }, Ordinal),
	By(func(v sarif.PropertyValue) sarif.ValueKind { return v.Normalized().Kind }, Number[sarif.ValueKind]),
)

var propertyMap = Map(PropertyValue)

// PropertyBag orders property bags independently of insertion order.
func PropertyBag(a, b sarif.PropertyBag) int {
	return propertyMap(a, b)
}
