package handlers

import (
	"strconv"
	"time"

	"VidTube.com/config"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/pkg/errors"
)

// Response 所有接口统一的返回结构
type Response struct {
	Success    bool        `json:"success"`
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Errors     interface{} `json:"errors,omitempty"`
}

// SendResponse pack response，状态码取自错误类型
func SendResponse(c *app.RequestContext, err error, data interface{}) {
	if err == nil {
		SendMessage(c, consts.StatusOK, errno.Success.ErrMsg, data)
		return
	}
	Err := errno.ConvertErr(err)
	var known errno.ErrNo
	if !errors.As(err, &known) {
		hlog.Errorf("%s %s: %v", c.Method(), c.Path(), errors.Cause(err))
		if !config.IsProduction() && config.ConfigInfo.Server.ExposeInternal {
			Err = Err.WithDetail(err.Error())
		}
	}
	status := Err.HTTPStatus()
	c.JSON(status, Response{
		Success:    false,
		StatusCode: status,
		Message:    Err.ErrMsg,
		Data:       nil,
		Errors:     Err.Detail,
	})
}

// SendMessage 成功返回并指定状态码与提示信息
func SendMessage(c *app.RequestContext, status int, message string, data interface{}) {
	c.JSON(status, Response{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// SendCreated 201
func SendCreated(c *app.RequestContext, message string, data interface{}) {
	SendMessage(c, consts.StatusCreated, message, data)
}

// BindErr 参数绑定失败统一为BadRequest
func BindErr(err error) error {
	return errno.ParamErr.WithMessage("Invalid request: " + err.Error())
}

// ParseID 读取路径参数中的雪花ID
func ParseID(c *app.RequestContext, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errno.ParamErr.WithMessage("Invalid " + name)
	}
	return id, nil
}

// Page 读取page与limit，非法值交给service使用默认值
func Page(c *app.RequestContext) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

// TokenResponder 把签发的token写成统一的返回结构
type TokenResponder struct{}

type tokenData struct {
	Token  string `json:"token"`
	Expire string `json:"expire"`
}

func (TokenResponder) Token(c *app.RequestContext, token string, expire time.Time) {
	SendMessage(c, consts.StatusOK, "Login successful", tokenData{
		Token:  token,
		Expire: expire.Format(time.RFC3339),
	})
}

func (TokenResponder) Fail(c *app.RequestContext, err error) {
	SendResponse(c, err, nil)
}
