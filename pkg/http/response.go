package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"QuoteLens/pkg/http/middleware"
)

// DataResponse writes the API envelope. The HTTP status mirrors the envelope status
// and the request id is echoed so clients can quote it in bug reports.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, APIResponse{
		Status:    statusCode,
		Message:   http.StatusText(statusCode),
		RequestID: middleware.GetRequestID(c),
		Data:      data,
	})
}

// ListResponse writes rows with their count.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &ListDataResponse{Rows: rows, Total: total})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

func CreatedResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusCreated, data)
}

// BadRequestResponse writes request validation failures.
func BadRequestResponse(c echo.Context, errs []ValidationError) error {
	return DataResponse(c, http.StatusBadRequest, errs)
}

// AppErrorResponse writes err as a list of one AppError. Deadlines map to 504;
// anything that is not an AppError is reported as an opaque 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	switch {
	case errors.As(err, &appErr):
	case errors.Is(err, context.DeadlineExceeded):
		appErr = NewAppError("ERR_TIMEOUT", "", "upstream timed out", http.StatusGatewayTimeout).WithError(err)
	default:
		appErr = InternalError("something went wrong").WithError(err)
	}
	return DataResponse(c, appErr.Status, []*AppError{appErr})
}
