package cache

import "fmt"

// Resource names of the views the editor keeps in cache.
const (
	ResourceSessionSets    = "session-sets"
	ResourceExerciseSets   = "exercise-sets"
	ResourceSessionSummary = "session-summary"
)

// Key identifies a named view over one or more collections. Keys are
// comparable: two keys are equal iff all fields are equal, which makes them
// usable as map keys for invalidation and subscriber scoping.
type Key struct {
	Resource string
	Scope    int64
}

// SessionSets is the key of the list of sets recorded in one session.
func SessionSets(sessionID int64) Key {
	return Key{Resource: ResourceSessionSets, Scope: sessionID}
}

// ExerciseSets is the key of all sets of one exercise across sessions.
func ExerciseSets(exerciseID int64) Key {
	return Key{Resource: ResourceExerciseSets, Scope: exerciseID}
}

// SessionSummary is the key of the aggregate view of one session.
func SessionSummary(sessionID int64) Key {
	return Key{Resource: ResourceSessionSummary, Scope: sessionID}
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%d", k.Resource, k.Scope)
}
