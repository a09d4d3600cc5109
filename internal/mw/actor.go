package mw

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"restaurant-floor-backend/internal/model"
)

const (
	actorIDHeader   = "X-Actor-ID"
	actorRoleHeader = "X-Actor-Role"
	actorKey        = "actor"
	pollHeader      = "X-Poll-Interval"
)

// Actor is the identity the upstream gateway has already authenticated.
type Actor struct {
	ID   string
	Role model.Role
}

// Authenticate requires the actor headers on every request of the group.
func Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := Actor{ID: c.GetHeader(actorIDHeader), Role: model.Role(c.GetHeader(actorRoleHeader))}
		if actor.ID == "" || !actor.Role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid actor identity"})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole rejects actors whose role is not listed with 403.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := lookupActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid actor identity"})
			return
		}
		if !allowed[actor.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "role " + string(actor.Role) + " is not allowed"})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the actor set by Authenticate.
func ActorFrom(c *gin.Context) Actor {
	actor, _ := lookupActor(c)
	return actor
}

func lookupActor(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

// PollInterval advertises how often displays should re-read authoritative state.
func PollInterval(seconds int) gin.HandlerFunc {
	value := strconv.Itoa(seconds)
	return func(c *gin.Context) {
		c.Header(pollHeader, value)
		c.Next()
	}
}
