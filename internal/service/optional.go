package service

import "encoding/json"

// OptionalUint distinguishes an absent JSON field from an explicit
// null. Plain pointer fields collapse both to nil, which would make
// "unassign this task" unrepresentable in a partial update.
type OptionalUint struct {
	Set   bool
	Value *uint
}

// UnmarshalJSON marks the field present; null leaves Value nil.
func (o *OptionalUint) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var v uint
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// MarshalJSON round-trips the value; an unset field encodes as null.
func (o OptionalUint) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}
