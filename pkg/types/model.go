package types

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Reserved record keys. They are never stored in the extra bag and cannot be
// assigned through Assign.
const (
	FieldClass     = "__class__"
	FieldID        = "id"
	FieldCreatedAt = "created_at"
	FieldUpdatedAt = "updated_at"
)

// TimeFormat is the textual timestamp layout used in records.
const TimeFormat = "2006-01-02T15:04:05.000000"

// Model is implemented by every variant. Concrete models embed BaseModel and
// override Variant and Fields.
type Model interface {
	// Variant returns the tag of the concrete type.
	Variant() Variant

	// Base returns the embedded identity, timestamps and extra bag.
	Base() *BaseModel

	// Fields returns the declared fields bound to this instance, in
	// declaration order.
	Fields() []Field
}

// BaseModel carries identity and timestamps. It is also the base variant.
type BaseModel struct {
	ID        string           // UUID, generated on creation; immutable.
	CreatedAt time.Time        // Set once at construction.
	UpdatedAt time.Time        // Refreshed by Touch on every save.
	Extra     map[string]Value // Attributes outside the declared field set.
}

func (b *BaseModel) Variant() Variant { return VariantBaseModel }

func (b *BaseModel) Base() *BaseModel { return b }

func (b *BaseModel) Fields() []Field { return nil }

// Touch sets UpdatedAt to now. If the clock has not advanced past the
// current UpdatedAt, it moves forward by one microsecond instead so that
// every touch strictly increases UpdatedAt.
func (b *BaseModel) Touch(now time.Time) {
	now = normalizeTime(now)
	if !now.After(b.UpdatedAt) {
		now = b.UpdatedAt.Add(time.Microsecond)
	}
	b.UpdatedAt = now
}

// Field is a declared attribute bound to a model instance.
type Field struct {
	Name string
	Kind Kind
	get  func() Value
	set  func(Value)
}

// Value returns the current value of the field.
func (f Field) Value() Value {
	return f.get()
}

// Set converts v to the declared kind and stores it.
func (f Field) Set(v Value) error {
	cv, err := v.Convert(f.Kind)
	if err != nil {
		return &FieldError{Field: f.Name, Err: err}
	}
	f.set(cv)
	return nil
}

func textField(name string, p *string) Field {
	return Field{
		Name: name,
		Kind: KindText,
		get:  func() Value { return TextValue(*p) },
		set:  func(v Value) { *p = v.AsText() },
	}
}

func integerField(name string, p *int64) Field {
	return Field{
		Name: name,
		Kind: KindInteger,
		get:  func() Value { return IntegerValue(*p) },
		set:  func(v Value) { *p = v.AsInteger() },
	}
}

func floatField(name string, p *float64) Field {
	return Field{
		Name: name,
		Kind: KindFloat,
		get:  func() Value { return FloatValue(*p) },
		set:  func(v Value) { *p = v.AsFloat() },
	}
}

func listField(name string, p *[]string) Field {
	return Field{
		Name: name,
		Kind: KindList,
		get:  func() Value { return ListValue(*p...) },
		set:  func(v Value) { *p = v.AsList() },
	}
}

// New constructs a fresh model of variant v with a generated id and both
// timestamps set to now. Declared fields hold their zero defaults.
func New(v Variant, now time.Time) (Model, error) {
	m, err := v.zero()
	if err != nil {
		return nil, err
	}
	b := m.Base()
	b.ID = generateUUID()
	b.CreatedAt = normalizeTime(now)
	b.UpdatedAt = b.CreatedAt
	return m, nil
}

// Key returns the compound registry key "<Variant>.<id>".
func Key(m Model) string {
	return CompoundKey(m.Variant(), m.Base().ID)
}

// CompoundKey joins a variant and id into a registry key.
func CompoundKey(v Variant, id string) string {
	return string(v) + "." + id
}

// IsReserved reports whether name is an identity, timestamp or tag key.
func IsReserved(name string) bool {
	switch name {
	case FieldClass, FieldID, FieldCreatedAt, FieldUpdatedAt:
		return true
	}
	return false
}

// field returns the declared field called name.
func field(m Model, name string) (Field, bool) {
	for _, f := range m.Fields() {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldKind returns the kind an assignment to name must produce: the
// declared kind for declared fields, or the kind of the current value for an
// existing extra attribute. ok is false when the attribute is not set.
func FieldKind(m Model, name string) (Kind, bool) {
	if f, ok := field(m, name); ok {
		return f.Kind, true
	}
	if v, ok := m.Base().Extra[name]; ok {
		return v.Kind(), true
	}
	return "", false
}

// Attribute returns the value of a declared field or extra attribute.
func Attribute(m Model, name string) (Value, bool) {
	if f, ok := field(m, name); ok {
		return f.Value(), true
	}
	v, ok := m.Base().Extra[name]
	return v, ok
}

// Assign stores v under name. Declared fields convert v to their kind; any
// other name is kept in the extra bag as-is. Reserved keys are rejected with
// ErrProtectedField.
func Assign(m Model, name string, v Value) error {
	if IsReserved(name) {
		return &FieldError{Field: name, Err: ErrProtectedField}
	}
	if f, ok := field(m, name); ok {
		return f.Set(v)
	}
	b := m.Base()
	if b.Extra == nil {
		b.Extra = make(map[string]Value)
	}
	b.Extra[name] = v
	return nil
}

// Describe renders "[<Variant>] (<id>) {attributes}" for display.
func Describe(m Model) string {
	b := m.Base()
	parts := []string{
		fmt.Sprintf("%q: %q", FieldID, b.ID),
		fmt.Sprintf("%q: %q", FieldCreatedAt, FormatTime(b.CreatedAt)),
		fmt.Sprintf("%q: %q", FieldUpdatedAt, FormatTime(b.UpdatedAt)),
	}
	for _, f := range m.Fields() {
		parts = append(parts, fmt.Sprintf("%q: %s", f.Name, f.Value()))
	}
	for _, name := range extraNames(b) {
		parts = append(parts, fmt.Sprintf("%q: %s", name, b.Extra[name]))
	}
	return fmt.Sprintf("[%s] (%s) {%s}", m.Variant(), b.ID, strings.Join(parts, ", "))
}

func extraNames(b *BaseModel) []string {
	names := make([]string, 0, len(b.Extra))
	for name := range b.Extra {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatTime renders t in the record timestamp layout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a record timestamp. The fraction is optional; RFC 3339
// text with a zone is also accepted.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05", s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrInvalidData, s)
		}
	}
	return normalizeTime(t), nil
}

// normalizeTime drops the monotonic reading and sub-microsecond precision so
// that a timestamp survives a format/parse cycle unchanged.
func normalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
