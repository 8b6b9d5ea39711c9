package api

import (
	stderrors "errors"
	"net/http"

	"car-mzansi-connect/internal/auth"
	"car-mzansi-connect/internal/common/errors"
	"car-mzansi-connect/internal/finance/application"
	"car-mzansi-connect/internal/finance/calculator"
	"car-mzansi-connect/internal/finance/consent"
	"car-mzansi-connect/internal/finance/wizard"
	"car-mzansi-connect/internal/marketplace/listings"

	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func fail(c *gin.Context, status int, err *errors.StandardError) {
	c.AbortWithStatusJSON(status, gin.H{"error": err})
}

// writeError maps domain errors onto HTTP statuses and StandardError bodies.
func (s *Server) writeError(c *gin.Context, err error) {
	var verr *application.ValidationError
	var qerr *calculator.QuoteError

	switch {
	case stderrors.As(err, &verr):
		fieldErrs := make(map[string]string, len(verr.Fields))
		for f, res := range verr.Fields {
			fieldErrs[string(f)] = res.Message
		}
		fail(c, http.StatusUnprocessableEntity,
			errors.NewApplicationValidationFailedError(verr.Error()).WithMetadata("fields", fieldErrs))
	case stderrors.As(err, &qerr):
		fail(c, http.StatusUnprocessableEntity,
			errors.NewInvalidRequestError(qerr.Error()).WithMetadata("problems", qerr.Problems))
	case stderrors.Is(err, consent.ErrConsentIncomplete):
		fail(c, http.StatusUnprocessableEntity, errors.NewConsentIncompleteError())
	case stderrors.Is(err, application.ErrUnknownField), stderrors.Is(err, consent.ErrUnknownFlag):
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
	case stderrors.Is(err, wizard.ErrAuthRequired), stderrors.Is(err, auth.ErrInvalidToken),
		stderrors.Is(err, auth.ErrSessionNotFound):
		fail(c, http.StatusUnauthorized, errors.NewAuthRequiredError(""))
	case stderrors.Is(err, auth.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, errors.NewInvalidCredentialsError())
	case stderrors.Is(err, auth.ErrWeakPassword), stderrors.Is(err, auth.ErrMissingFields):
		fail(c, http.StatusBadRequest, errors.NewInvalidRequestError(err.Error()))
	case stderrors.Is(err, auth.ErrEmailTaken):
		fail(c, http.StatusConflict, errors.NewEmailTakenError())
	case stderrors.Is(err, wizard.ErrSubmissionInProgress):
		fail(c, http.StatusConflict, errors.NewSubmissionInProgressError())
	case stderrors.Is(err, wizard.ErrSubmissionFailed):
		fail(c, http.StatusBadGateway, errors.NewSubmissionFailedError(err))
	case stderrors.Is(err, wizard.ErrNotOpen), stderrors.Is(err, wizard.ErrWrongStage),
		stderrors.Is(err, wizard.ErrAlreadyOpen), stderrors.Is(err, wizard.ErrClosed):
		fail(c, http.StatusConflict, errors.NewWizardStateError(err.Error()))
	case stderrors.Is(err, listings.ErrListingNotFound):
		fail(c, http.StatusNotFound, errors.NewNotFoundError("listing"))
	default:
		if stdErr, ok := errors.AsStandardError(err); ok {
			fail(c, http.StatusInternalServerError, stdErr)
			return
		}
		s.logger.WithError(err).Error("request failed", map[string]interface{}{
			"path": c.FullPath(),
		})
		fail(c, http.StatusInternalServerError, errors.NewInternalError(err))
	}
}
