package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/divvault/internal/common"
	"github.com/dmitrijs2005/divvault/internal/server/models"
	"github.com/dmitrijs2005/divvault/internal/server/services"
	"github.com/gin-gonic/gin"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	OU       string `json:"ou" binding:"omitempty,uuid"`
	Division string `json:"division" binding:"omitempty,uuid"`
}

type membershipRequest struct {
	OU       string `json:"ou" binding:"required_without=Division,omitempty,uuid"`
	Division string `json:"division" binding:"required_without=OU,omitempty,uuid"`
}

type roleRequest struct {
	Role models.Role `json:"role" binding:"required,vaultrole"`
}

type credentialRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

var (
	registerReasons = map[string]string{
		"username":      services.ReasonMissingPassword,
		"password":      services.ReasonMissingPassword,
		"ou.uuid":       "invalid OU id",
		"division.uuid": "invalid division id",
	}
	membershipReasons = map[string]string{
		"ou.required_without":       services.ReasonMembershipRequired,
		"division.required_without": services.ReasonMembershipRequired,
		"ou.uuid":                   "invalid OU id",
		"division.uuid":             "invalid division id",
	}
	roleReasons = map[string]string{
		"role": services.ReasonInvalidRole,
	}
)

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req, registerReasons); err != nil {
		s.writeError(c, err)
		return
	}

	token, err := s.users.Register(c.Request.Context(), services.RegisterRequest{
		Username:   req.Username,
		Password:   req.Password,
		OUID:       req.OU,
		DivisionID: req.Division,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user registered", "username", req.Username)
	c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req, nil); err != nil {
		s.writeError(c, common.WithReason(common.ErrorUnauthorized, services.ReasonIncorrectLogin))
		return
	}

	token, err := s.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "user logged in", "username", req.Username)
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (s *HTTPServer) ouOptions(c *gin.Context) {
	refs, err := s.users.OUOptions(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}

func (s *HTTPServer) divisionOptions(c *gin.Context) {
	refs, err := s.users.DivisionOptions(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, refs)
}

func (s *HTTPServer) listUsers(c *gin.Context) {
	users, err := s.directory.ListUsers(c.Request.Context(), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *HTTPServer) listOUs(c *gin.Context) {
	ous, err := s.directory.ListOUs(c.Request.Context(), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ous)
}

func (s *HTTPServer) listDivisions(c *gin.Context) {
	divisions, err := s.directory.ListDivisions(c.Request.Context(), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, divisions)
}

func (s *HTTPServer) assign(c *gin.Context) {
	s.changeMembership(c, s.directory.Assign)
}

func (s *HTTPServer) unassign(c *gin.Context) {
	s.changeMembership(c, s.directory.Unassign)
}

func (s *HTTPServer) changeMembership(c *gin.Context, op func(ctx context.Context, id models.Identity, userID string, m services.Membership) (*models.User, error)) {
	var req membershipRequest
	if err := bindJSON(c, &req, membershipReasons); err != nil {
		s.writeError(c, err)
		return
	}

	user, err := op(c.Request.Context(), identity(c), c.Param("userId"),
		services.Membership{OUID: req.OU, DivisionID: req.Division})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *HTTPServer) changeRole(c *gin.Context) {
	var req roleRequest
	if err := bindJSON(c, &req, roleReasons); err != nil {
		s.writeError(c, err)
		return
	}

	user, err := s.directory.ChangeRole(c.Request.Context(), identity(c), c.Param("userId"), req.Role)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "role changed", "user", user.Username, "role", user.Role)
	c.JSON(http.StatusOK, user)
}

func (s *HTTPServer) getCredentials(c *gin.Context) {
	repo, err := s.credentials.GetCredentials(c.Request.Context(), identity(c), c.Param("divisionId"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, repo)
}

func (s *HTTPServer) addCredential(c *gin.Context) {
	var req credentialRequest
	if err := bindJSON(c, &req, nil); err != nil {
		s.writeError(c, err)
		return
	}

	divisionID := c.Param("divisionId")
	repo, err := s.credentials.AddCredential(c.Request.Context(), identity(c), divisionID, req.Key, req.Value)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "credential added", "division", divisionID)
	c.JSON(http.StatusCreated, repo)
}

func (s *HTTPServer) updateCredential(c *gin.Context) {
	var req credentialRequest
	if err := bindJSON(c, &req, nil); err != nil {
		s.writeError(c, err)
		return
	}

	divisionID, credentialID := c.Param("divisionId"), c.Param("credentialId")
	repo, err := s.credentials.UpdateCredential(c.Request.Context(), identity(c), divisionID, credentialID, req.Key, req.Value)
	if err != nil {
		s.writeError(c, err)
		return
	}

	s.logger.Info(c.Request.Context(), "credential updated", "division", divisionID, "credential", credentialID)
	c.JSON(http.StatusOK, repo)
}
