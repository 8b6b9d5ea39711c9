package api

import (
	"net/http"

	"car-mzansi-connect/internal/auth"
	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/models"

	"github.com/gin-gonic/gin"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (s *Server) signUp(c *gin.Context) {
	var req auth.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
		return
	}
	sess, err := s.auth.SignUp(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusCreated, sess)
}

func (s *Server) signIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
		return
	}
	sess, err := s.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusOK, sess)
}

func (s *Server) signOut(c *gin.Context) {
	if token, ok := auth.TokenFrom(c.Request.Context()); ok {
		if err := s.auth.SignOut(c.Request.Context(), token); err != nil {
			s.writeError(c, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) me(c *gin.Context) {
	token, ok := auth.TokenFrom(c.Request.Context())
	if !ok {
		fail(c, http.StatusUnauthorized, errors.NewAuthRequiredError(""))
		return
	}
	user, err := s.auth.Current(c.Request.Context(), token)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusOK, user)
}

func (s *Server) updateProfile(c *gin.Context) {
	token, ok := auth.TokenFrom(c.Request.Context())
	if !ok {
		fail(c, http.StatusUnauthorized, errors.NewAuthRequiredError(""))
		return
	}
	var patch models.ProfileUpdate
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
		return
	}
	user, err := s.auth.UpdateProfile(c.Request.Context(), token, patch)
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusOK, user)
}
