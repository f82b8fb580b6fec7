package errno

import (
	"errors"
	"fmt"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const (
	SuccessCode         = 0
	ServiceErrCode      = 10001
	ParamErrCode        = 10002
	AuthErrCode         = 10003
	TokenExpiredErrCode = 10004
	TokenInvalidErrCode = 10005
	ForbiddenErrCode    = 10006
	NotFoundErrCode     = 10007
	ConflictErrCode     = 10008
	TooManyRequestsCode = 10009
)

// ErrNo 统一的业务错误
type ErrNo struct {
	ErrCode int64
	ErrMsg  string
	// Detail 附加的错误细节，例如token校验失败的原因
	Detail interface{}
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{ErrCode: code, ErrMsg: msg}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

func (e ErrNo) WithDetail(detail interface{}) ErrNo {
	e.Detail = detail
	return e
}

// Is 按错误码比较，忽略消息和细节
func (e ErrNo) Is(target error) bool {
	t, ok := target.(ErrNo)
	if !ok {
		return false
	}
	return e.ErrCode == t.ErrCode
}

// HTTPStatus 错误码到HTTP状态码的映射
func (e ErrNo) HTTPStatus() int {
	switch e.ErrCode {
	case SuccessCode:
		return consts.StatusOK
	case ParamErrCode:
		return consts.StatusBadRequest
	case AuthErrCode, TokenExpiredErrCode, TokenInvalidErrCode:
		return consts.StatusUnauthorized
	case ForbiddenErrCode:
		return consts.StatusForbidden
	case NotFoundErrCode:
		return consts.StatusNotFound
	case ConflictErrCode:
		return consts.StatusConflict
	case TooManyRequestsCode:
		return consts.StatusTooManyRequests
	default:
		return consts.StatusInternalServerError
	}
}

var (
	Success            = NewErrNo(SuccessCode, "Success")
	ServiceErr         = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	ParamErr           = NewErrNo(ParamErrCode, "Wrong Parameter has been given")
	RequestErr         = ParamErr
	AuthErr            = NewErrNo(AuthErrCode, "Not authenticated")
	TokenExpiredErr    = NewErrNo(TokenExpiredErrCode, "Token has expired")
	TokenInvalidErr    = NewErrNo(TokenInvalidErrCode, "Token verification failed")
	ForbiddenErr       = NewErrNo(ForbiddenErrCode, "You are not allowed to perform this action")
	NotFoundErr        = NewErrNo(NotFoundErrCode, "Resource not found")
	ConflictErr        = NewErrNo(ConflictErrCode, "Resource already exists")
	TooManyRequestsErr = NewErrNo(TooManyRequestsCode, "Too many requests")
)

// ConvertErr convert error to Errno
func ConvertErr(err error) ErrNo {
	if err == nil {
		return Success
	}
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}
	s := ServiceErr
	s.ErrMsg = "Internal server error"
	return s
}
