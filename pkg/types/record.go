package types

import (
	"fmt"
	"time"
)

// Record is the flat attribute mapping of one entity as stored in the
// persisted document.
type Record map[string]Value

// Document is the whole persisted registry keyed by compound key.
type Document map[string]Record

// Variant returns the tag stored under __class__, or "" if absent or not
// text.
func (r Record) Variant() string {
	v, ok := r[FieldClass]
	if !ok || v.Kind() != KindText {
		return ""
	}
	return v.AsText()
}

// Equal reports whether r and o hold the same keys and values.
func (r Record) Equal(o Record) bool {
	if len(r) != len(o) {
		return false
	}
	for k, v := range r {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}
	return true
}

// ToRecord returns every attribute of m plus the __class__ tag, with both
// timestamps rendered as text.
func ToRecord(m Model) Record {
	b := m.Base()
	fields := m.Fields()
	rec := make(Record, 4+len(fields)+len(b.Extra))
	for name, v := range b.Extra {
		rec[name] = v
	}
	for _, f := range fields {
		rec[f.Name] = f.Value()
	}
	rec[FieldID] = TextValue(b.ID)
	rec[FieldCreatedAt] = TextValue(FormatTime(b.CreatedAt))
	rec[FieldUpdatedAt] = TextValue(FormatTime(b.UpdatedAt))
	rec[FieldClass] = TextValue(string(m.Variant()))
	return rec
}

// FromRecord rebuilds a model of variant v from a record. Every key except
// __class__ is copied: declared fields are converted to their declared
// kind, other keys go to the extra bag. Missing timestamps default to now and
// a missing id is generated. The model is not registered anywhere.
func FromRecord(v Variant, rec Record, now time.Time) (Model, error) {
	m, err := v.zero()
	if err != nil {
		return nil, err
	}
	b := m.Base()

	id, err := textAttr(rec, FieldID)
	if err != nil {
		return nil, err
	}
	if id == "" {
		id = generateUUID()
	}
	b.ID = id

	b.CreatedAt, err = timeAttr(rec, FieldCreatedAt, now)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = timeAttr(rec, FieldUpdatedAt, now)
	if err != nil {
		return nil, err
	}
	if b.UpdatedAt.Before(b.CreatedAt) {
		return nil, &FieldError{
			Field: FieldUpdatedAt,
			Err:   fmt.Errorf("%w: updated_at precedes created_at", ErrInvalidData),
		}
	}

	for name, val := range rec {
		if IsReserved(name) {
			continue
		}
		if f, ok := field(m, name); ok {
			if err := f.Set(val); err != nil {
				return nil, err
			}
			continue
		}
		b.Extra[name] = val
	}
	return m, nil
}

// Reconstruct resolves the record's __class__ tag and rebuilds the model
// with FromRecord. A missing or undeclared tag is ErrUnknownVariant.
func Reconstruct(rec Record, now time.Time) (Model, error) {
	tag := rec.Variant()
	if tag == "" {
		return nil, fmt.Errorf("%w: record has no %s tag", ErrUnknownVariant, FieldClass)
	}
	v, err := ParseVariant(tag)
	if err != nil {
		return nil, err
	}
	return FromRecord(v, rec, now)
}

func textAttr(rec Record, name string) (string, error) {
	v, ok := rec[name]
	if !ok {
		return "", nil
	}
	if v.Kind() != KindText {
		return "", &FieldError{Field: name, Err: fmt.Errorf("%w: want text, got %s", ErrInvalidData, v.Kind())}
	}
	return v.AsText(), nil
}

func timeAttr(rec Record, name string, now time.Time) (time.Time, error) {
	s, err := textAttr(rec, name)
	if err != nil {
		return time.Time{}, err
	}
	if s == "" {
		return normalizeTime(now), nil
	}
	t, err := ParseTime(s)
	if err != nil {
		return time.Time{}, &FieldError{Field: name, Err: err}
	}
	return t, nil
}
