package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ErrorBody is the JSON body of every failed request.
type ErrorBody struct {
	Code      ErrCode           `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	Result    interface{}       `json:"result,omitempty"`
	RequestID string            `json:"request_id"`
}

// Success sends the resource itself as the response body.
func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// Fail sends an error response with the default message for code.
func Fail(c *gin.Context, statusCode int, code ErrCode) {
	c.JSON(statusCode, newError(c, code, GetMessage(code)))
}

// FailWithMessage sends an error response with a specific message.
func FailWithMessage(c *gin.Context, statusCode int, code ErrCode, message string) {
	c.JSON(statusCode, newError(c, code, message))
}

// FailWithFields sends an error response with field-level validation details.
func FailWithFields(c *gin.Context, statusCode int, code ErrCode, message string, fields map[string]string) {
	body := newError(c, code, message)
	body.Fields = fields
	c.JSON(statusCode, body)
}

// FailWithResult sends an error response that carries an existing result.
func FailWithResult(c *gin.Context, statusCode int, code ErrCode, message string, result interface{}) {
	body := newError(c, code, message)
	body.Result = result
	c.JSON(statusCode, body)
}

// AbortFail aborts the middleware chain and sends an error response.
func AbortFail(c *gin.Context, statusCode int, code ErrCode) {
	c.AbortWithStatusJSON(statusCode, newError(c, code, GetMessage(code)))
}

func newError(c *gin.Context, code ErrCode, message string) ErrorBody {
	if message == "" {
		message = GetMessage(code)
	}
	return ErrorBody{Code: code, Message: message, RequestID: RequestID(c)}
}

// RequestID returns the current request's ID, or a fresh one if the
// middleware was not applied.
func RequestID(c *gin.Context) string {
	if id := c.GetString(ContextKeyRequestID); id != "" {
		return id
	}
	return uuid.New().String()
}
