package api

import (
	"net/http"

	"car-mzansi-connect/internal/auth"
	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/finance/wizard"

	"github.com/gin-gonic/gin"
)

type openRequest struct {
	ListingID string `json:"listingId" binding:"required"`
}

type fieldsRequest struct {
	Fields map[string]string `json:"fields" binding:"required"`
}

type consentRequest struct {
	Flag  string `json:"flag" binding:"required"`
	Value bool   `json:"value"`
}

type wizardView struct {
	Wizard        wizard.Snapshot       `json:"wizard"`
	Notifications []wizard.Notification `json:"notifications,omitempty"`
}

func (s *Server) view(ctrl *wizard.Controller) wizardView {
	return wizardView{Wizard: ctrl.Snapshot(), Notifications: s.store.Drain(ctrl.ID())}
}

// lookup resolves the wizard in the path. A wizard bound to a user is reported
// as missing to every other caller, anonymous ones included.
func (s *Server) lookup(c *gin.Context) (*wizard.Controller, bool) {
	ctrl, ok := s.store.Get(c.Param("id"))
	if ok {
		if owner := ctrl.Owner(); owner != "" && s.callerID(c) != owner {
			s.logger.Warn("wizard access denied", map[string]interface{}{"wizardId": ctrl.ID()})
			ok = false
		}
	}
	if !ok {
		fail(c, http.StatusNotFound, errors.NewNotFoundError("wizard"))
		return nil, false
	}
	return ctrl, true
}

func (s *Server) callerID(c *gin.Context) string {
	token, ok := auth.TokenFrom(c.Request.Context())
	if !ok || s.auth == nil {
		return ""
	}
	user, err := s.auth.Current(c.Request.Context(), token)
	if err != nil {
		return ""
	}
	return user.ID
}

func (s *Server) openWizard(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
		return
	}

	listing, err := s.catalogue.Get(c.Request.Context(), req.ListingID)
	if err != nil {
		s.writeError(c, err)
		return
	}

	ctrl := s.store.Create()
	if err := ctrl.OpenListing(c.Request.Context(), listing); err != nil {
		s.store.remove(ctrl.ID())
		s.writeError(c, err)
		return
	}
	success(c, http.StatusCreated, s.view(ctrl))
}

func (s *Server) getWizard(c *gin.Context) {
	if ctrl, ok := s.lookup(c); ok {
		success(c, http.StatusOK, s.view(ctrl))
	}
}

func (s *Server) closeWizard(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := ctrl.Close(); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// updateFields applies every value before reporting the first unknown field.
func (s *Server) updateFields(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	var req fieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
		return
	}

	var firstErr error
	for name, value := range req.Fields {
		if err := ctrl.UpdateField(application.Field(name), value); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		s.writeError(c, firstErr)
		return
	}
	success(c, http.StatusOK, s.view(ctrl))
}

func (s *Server) advance(c *gin.Context) {
	s.step(c, func(ctrl *wizard.Controller) error { return ctrl.Advance() })
}

func (s *Server) retreat(c *gin.Context) {
	s.step(c, func(ctrl *wizard.Controller) error {
		_, err := ctrl.Retreat()
		return err
	})
}

func (s *Server) authSucceeded(c *gin.Context) {
	s.step(c, func(ctrl *wizard.Controller) error { return ctrl.AuthSucceeded(c.Request.Context()) })
}

func (s *Server) decline(c *gin.Context) {
	s.step(c, func(ctrl *wizard.Controller) error { return ctrl.Decline() })
}

func (s *Server) dismiss(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := ctrl.Dismiss(); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) setConsent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
		return
	}
	s.step(c, func(ctrl *wizard.Controller) error { return ctrl.SetConsent(consent.Flag(req.Flag), req.Value) })
}

func (s *Server) accept(c *gin.Context) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	receipt, err := ctrl.Accept(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusOK, gin.H{"receipt": receipt, "wizard": s.view(ctrl)})
}

func (s *Server) step(c *gin.Context, op func(*wizard.Controller) error) {
	ctrl, ok := s.lookup(c)
	if !ok {
		return
	}
	if err := op(ctrl); err != nil {
		s.writeError(c, err)
		return
	}
	success(c, http.StatusOK, s.view(ctrl))
}
