// Package types defines the hbnb entity model: the fixed set of variants,
// typed declared fields, the Value union used for records and extra
// attributes, the Store contract that persistence backends implement, and
// the standard error types shared by the engine and the console.
//
// A model is created fresh with New (new id, timestamps set to now) or
// rebuilt from a persisted Record with FromRecord or Reconstruct. ToRecord is
// the exact inverse of the reconstruction path.
package types
