package middleware

import (
	"github.com/dimitrije/taskboard/internal/session"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	OperatorIDKey    = "operator_id"
	OperatorEmailKey = "operator_email"
)

// SessionState is the part of the session the middleware inspects.
type SessionState interface {
	Active() bool
	Operator() session.Operator
}

// RequireSession rejects every request once the operator has logged out.
func RequireSession(sess SessionState) drift.HandlerFunc {
	return func(c *drift.Context) {
		if sess == nil || !sess.Active() {
			c.Unauthorized("session has been logged out")
			return
		}

		op := sess.Operator()
		c.Set(OperatorIDKey, op.ID)
		c.Set(OperatorEmailKey, op.Email)

		c.Next()
	}
}

func GetOperatorID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(OperatorIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetOperatorEmail(c *drift.Context) string {
	if email, ok := c.Get(OperatorEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}
