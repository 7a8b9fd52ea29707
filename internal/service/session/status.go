package session

import "github.com/Alijeyrad/mindbook_backend/internal/repo"

// transitions lists every status a session may move to from its current one.
// Declined, cancelled and completed are terminal.
var transitions = map[string][]string{
	repo.SessionPending:  {repo.SessionApproved, repo.SessionDeclined, repo.SessionCancelled},
	repo.SessionApproved: {repo.SessionCompleted, repo.SessionCancelled},
}

func knownStatus(s string) bool {
	switch s {
	case repo.SessionPending, repo.SessionApproved, repo.SessionDeclined,
		repo.SessionCancelled, repo.SessionCompleted:
		return true
	}
	return false
}

// CanTransition reports whether from → to is in the transition table.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// terminal sessions cannot be moved or edited.
func terminal(s string) bool {
	_, ok := transitions[s]
	return !ok
}
