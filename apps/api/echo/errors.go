package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/tetrixuno/skillup/core"
	"github.com/tetrixuno/skillup/core/filestore"
	"github.com/tetrixuno/skillup/core/submission"
	"github.com/tetrixuno/skillup/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// fileErrorStatus maps the storage subsystem's error taxonomy to HTTP status
// codes. The sentinel messages double as the response payload.
func fileErrorStatus(err error) (int, bool) {
	switch err {
	case filestore.ErrFileRequired,
		filestore.ErrAssignmentRequired,
		filestore.ErrInvalidName,
		filestore.ErrEmptyFile,
		filestore.ErrInvalidRangeHeader:
		return http.StatusBadRequest, true
	case filestore.ErrAssignmentNotFound,
		filestore.ErrNotFound,
		filestore.ErrUnassociated,
		filestore.ErrSubmissionNotFound:
		return http.StatusNotFound, true
	case filestore.ErrForbidden:
		return http.StatusForbidden, true
	case filestore.ErrUnsupportedType:
		return http.StatusUnsupportedMediaType, true
	case filestore.ErrPayloadTooLarge:
		return http.StatusRequestEntityTooLarge, true
	case filestore.ErrRangeNotSatisfiable:
		return http.StatusRequestedRangeNotSatisfiable, true
	case filestore.ErrAllocationExhausted,
		filestore.ErrUploadFailed:
		return http.StatusInternalServerError, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if fileCode, ok := fileErrorStatus(cause); ok {
			code = fileCode
			message = cause.Error()
		} else {
			switch origErr := cause.(type) {
			case *echo.HTTPError:
				if origErr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					message = origErr.Message
					break
				}
				if origErr.Internal != nil {
					if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
						origErr = herr
					}
				}
				code = origErr.Code
				message = origErr.Message
			case validator.ValidationErrors:
				fldErrs := make(map[string]string, len(origErr))
				for _, vErr := range origErr {
					fldErrs[vErr.Field()] = vErr.Translate(translator)
				}
				code = http.StatusBadRequest
				message = fldErrs
			case *core.ValidationError:
				if origErr.Fields != nil {
					fldErrs := make(map[string]string, len(origErr.Fields))
					for _, fErr := range origErr.Fields {
						fldErrs[fErr.Field] = fErr.Error
					}
					message = fldErrs
				} else {
					message = origErr.Error()
				}
				code = http.StatusBadRequest
			default:
				if cause == user.ErrNotFound || cause == submission.ErrNotFound ||
					cause == submission.ErrAssignmentNotFound {
					code = http.StatusNotFound
					message = cause.Error()
					break
				}

				// any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg

				var usr user.User
				if claims, cErr := getContextClaims(ctx); cErr == nil {
					usr.ID = claims.UserID
					usr.Username = claims.Username
					usr.Email = claims.Email
				}
				logger.Error(msg, errors.Wrap(err, msg), usr)

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"message": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
