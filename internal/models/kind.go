package models

import "fmt"

// Kind names an entity collection. Its value doubles as the API path segment.
type Kind string

const (
	KindTeams    Kind = "teams"
	KindProjects Kind = "projects"
	KindTasks    Kind = "tasks"
	KindUsers    Kind = "users"
)

var Kinds = []Kind{KindTeams, KindProjects, KindTasks, KindUsers}

func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

func (k Kind) String() string {
	return string(k)
}

// Singular is the record noun used in messages, e.g. "team".
func (k Kind) Singular() string {
	switch k {
	case KindTeams:
		return "team"
	case KindProjects:
		return "project"
	case KindTasks:
		return "task"
	case KindUsers:
		return "user"
	}
	return string(k)
}
