package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Origin отличает локально выданные идентификаторы от серверных.
type Origin uint8

const (
	// OriginRemote marks an authoritative, server-assigned identifier.
	OriginRemote Origin = iota
	// OriginLocal marks a placeholder minted by the client before confirmation.
	OriginLocal
)

// SetID identifies a set. Placeholder and authoritative identifiers live in
// disjoint namespaces: two ids are equal only if both Origin and Value match,
// so a server id "1" never collides with placeholder temp-1.
type SetID struct {
	Value  string
	Origin Origin
}

// RemoteID returns an authoritative identifier.
func RemoteID(value string) SetID {
	return SetID{Origin: OriginRemote, Value: value}
}

// LocalID returns a placeholder identifier for the n-th locally minted set.
func LocalID(n uint64) SetID {
	return SetID{Origin: OriginLocal, Value: strconv.FormatUint(n, 10)}
}

// IsPlaceholder reports whether the id was minted locally.
func (id SetID) IsPlaceholder() bool {
	return id.Origin == OriginLocal
}

// IsZero reports whether the id is unset.
func (id SetID) IsZero() bool {
	return id.Value == ""
}

// String renders placeholders as "temp-N" and authoritative ids as is.
// The rendering is for display only; identity is the struct itself.
func (id SetID) String() string {
	if id.Origin == OriginLocal {
		return "temp-" + id.Value
	}
	return id.Value
}

// MarshalJSON encodes only authoritative ids; placeholders never leave the client.
func (id SetID) MarshalJSON() ([]byte, error) {
	if id.Origin == OriginLocal {
		return nil, fmt.Errorf("placeholder id %s cannot be serialized", id)
	}
	return json.Marshal(id.Value)
}

// UnmarshalJSON decodes an authoritative id. Numeric ids are accepted as well.
func (id *SetID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = RemoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid set id %s: %w", string(data), err)
	}
	*id = RemoteID(n.String())
	return nil
}

// Set представляет один подход, выполненный в рамках тренировки.
type Set struct {
	CreatedAt  time.Time `json:"created_at"`     // CreatedAt время создания (серверное для подтвержденных записей)
	Weight     *float64  `json:"weight"`         // Weight рабочий вес, nil если еще не введен
	Reps       *int      `json:"reps"`           // Reps количество повторений, nil если еще не введено
	ID         SetID     `json:"id"`             // ID placeholder или серверный идентификатор
	Note       string    `json:"note,omitempty"` // Note произвольная заметка
	SessionID  int64     `json:"session_id"`     // SessionID тренировка, которой принадлежит подход
	ExerciseID int64     `json:"exercise_id"`    // ExerciseID упражнение
}

// Clone создает глубокую копию подхода.
func (s Set) Clone() Set {
	c := s
	if s.Weight != nil {
		w := *s.Weight
		c.Weight = &w
	}
	if s.Reps != nil {
		r := *s.Reps
		c.Reps = &r
	}
	return c
}

// Input returns the create payload for the set.
func (s Set) Input() SetInput {
	c := s.Clone()
	return SetInput{
		ExerciseID: c.ExerciseID,
		Weight:     c.Weight,
		Reps:       c.Reps,
		Note:       c.Note,
	}
}

// SetInput is the payload of a create call.
type SetInput struct {
	Weight     *float64 `json:"weight"`
	Reps       *int     `json:"reps"`
	Note       string   `json:"note,omitempty"`
	ExerciseID int64    `json:"exercise_id"`
}

// SetUpdate is a partial payload. Nil fields are left unchanged.
type SetUpdate struct {
	Weight *float64 `json:"weight,omitempty"`
	Reps   *int     `json:"reps,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u SetUpdate) IsEmpty() bool {
	return u.Weight == nil && u.Reps == nil && u.Note == nil
}

// Apply merges the update into s and returns the result. Applying the same
// update twice yields the same set as applying it once.
func (u SetUpdate) Apply(s Set) Set {
	out := s.Clone()
	if u.Weight != nil {
		w := *u.Weight
		out.Weight = &w
	}
	if u.Reps != nil {
		r := *u.Reps
		out.Reps = &r
	}
	if u.Note != nil {
		out.Note = *u.Note
	}
	return out
}

// SetFilter narrows a list call. Zero fields are ignored.
type SetFilter struct {
	SessionID  int64
	ExerciseID int64
}

// Float returns a pointer to v. Helper for building payloads.
func Float(v float64) *float64 {
	return &v
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}
