package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/daybook/internal/notesync"
	pkgerrors "github.com/yungbote/daybook/internal/pkg/errors"
	"github.com/yungbote/daybook/internal/reconcile"
)

type APIError struct {
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondDomainError maps the reconciliation error taxonomy onto HTTP
// statuses. Anything unrecognized is a 500.
func RespondDomainError(c *gin.Context, err error) {
	var (
		ambiguous *reconcile.AmbiguousReferenceError
		invalid   *reconcile.InvalidAssociationError
		ordering  *reconcile.OrderingViolationError
		conflict  *notesync.MergeConflictError
	)
	switch {
	case errors.As(err, &ambiguous):
		c.JSON(http.StatusConflict, ErrorEnvelope{Error: APIError{
			Message: err.Error(), Code: "ambiguous_reference", Detail: ambiguous,
		}})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message: err.Error(), Code: "invalid_association", Detail: invalid,
		}})
	case errors.As(err, &ordering):
		c.JSON(http.StatusUnprocessableEntity, ErrorEnvelope{Error: APIError{
			Message: err.Error(), Code: "ordering_violation", Detail: ordering,
		}})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, ErrorEnvelope{Error: APIError{
			Message: err.Error(), Code: "merge_conflict", Detail: conflict.Conflicts,
		}})
	case errors.Is(err, pkgerrors.ErrNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrConflict):
		RespondError(c, http.StatusConflict, "conflict", err)
	default:
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}
