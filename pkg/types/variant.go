package types

import "fmt"

// Variant is the tag of a domain entity kind. It is the first half of every
// compound key and the value of the __class__ field in a record.
type Variant string

// Declared variants.
const (
	VariantBaseModel Variant = "BaseModel"
	VariantUser      Variant = "User"
	VariantState     Variant = "State"
	VariantCity      Variant = "City"
	VariantAmenity   Variant = "Amenity"
	VariantPlace     Variant = "Place"
	VariantReview    Variant = "Review"
)

// variantOrder lists the variants in declaration order for enumeration.
var variantOrder = []Variant{
	VariantBaseModel,
	VariantUser,
	VariantState,
	VariantCity,
	VariantAmenity,
	VariantPlace,
	VariantReview,
}

// constructors maps each variant to a function returning a zero model of
// that variant. Every entry in variantOrder must have a constructor.
var constructors = map[Variant]func() Model{
	VariantBaseModel: func() Model { return &BaseModel{} },
	VariantUser:      func() Model { return &User{} },
	VariantState:     func() Model { return &State{} },
	VariantCity:      func() Model { return &City{} },
	VariantAmenity:   func() Model { return &Amenity{} },
	VariantPlace:     func() Model { return &Place{AmenityIDs: []string{}} },
	VariantReview:    func() Model { return &Review{} },
}

// Variants returns all declared variants in declaration order.
func Variants() []Variant {
	out := make([]Variant, len(variantOrder))
	copy(out, variantOrder)
	return out
}

// Valid reports whether v is a declared variant.
func (v Variant) Valid() bool {
	_, ok := constructors[v]
	return ok
}

func (v Variant) String() string {
	return string(v)
}

// ParseVariant resolves a tag to a declared variant.
// Returns an error wrapping ErrUnknownVariant if the tag is not declared.
func ParseVariant(tag string) (Variant, error) {
	v := Variant(tag)
	if !v.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownVariant, tag)
	}
	return v, nil
}

// zero returns an empty model of variant v with its extra bag allocated.
func (v Variant) zero() (Model, error) {
	ctor, ok := constructors[v]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, string(v))
	}
	m := ctor()
	m.Base().Extra = make(map[string]Value)
	return m, nil
}
