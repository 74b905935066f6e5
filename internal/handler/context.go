package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// companyIDFrom reads the company scope the auth middleware stored.
func companyIDFrom(c *gin.Context) (uuid.UUID, bool) {
	raw, _ := c.Get("companyID")
	s, _ := raw.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// actorIDFrom reads the acting user for audit attribution. Nil when the
// token lacks a subject, which only happens on unauthenticated routes.
func actorIDFrom(c *gin.Context) *uuid.UUID {
	raw, _ := c.Get("userID")
	s, _ := raw.(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return nil
	}
	return &id
}
