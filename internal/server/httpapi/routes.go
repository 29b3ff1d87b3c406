package httpapi

import (
	"github.com/dmitrijs2005/divvault/internal/server/access"
	"github.com/gin-gonic/gin"
)

func (s *HTTPServer) buildRoutes(route *gin.RouterGroup) {
	route.GET("/healthz", s.liveness)

	route.POST("/register", s.register)
	route.POST("/login", s.login)
	route.GET("/ous-register", s.ouOptions)
	route.GET("/divisions-register", s.divisionOptions)

	route.GET("/users",
		s.authenticate,
		adminOnly(access.ListDirectory),
		s.listUsers)
	route.PUT("/users/:userId/assign",
		s.authenticate,
		adminOnly(access.AssignMembership),
		s.assign)
	route.PATCH("/users/:userId/unassign",
		s.authenticate,
		adminOnly(access.AssignMembership),
		s.unassign)
	route.PUT("/users/:userId/role",
		s.authenticate,
		adminOnly(access.ChangeRole),
		s.changeRole)
	route.GET("/ous",
		s.authenticate,
		adminOnly(access.ListDirectory),
		s.listOUs)
	route.GET("/divisions",
		s.authenticate,
		adminOnly(access.ListDirectory),
		s.listDivisions)

	route.GET("/credentials/:divisionId",
		s.authenticate,
		s.getCredentials)
	route.POST("/credentials/:divisionId",
		s.authenticate,
		s.addCredential)
	route.PUT("/credentials/:divisionId/:credentialId",
		s.authenticate,
		s.updateCredential)
}
