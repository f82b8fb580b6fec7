package handlers

import (
	"os"
	"path/filepath"
	"strings"

	"VidTube.com/config"
	"VidTube.com/pkg/errno"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// SaveUpload 把multipart文件落到上传目录，返回临时路径与Content-Type
// 文件不存在且非必填时返回空路径
func SaveUpload(c *app.RequestContext, field string, required bool) (string, string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if required {
			return "", "", errno.ParamErr.WithMessage("Missing file: " + field)
		}
		return "", "", nil
	}
	dir := config.ConfigInfo.Server.UploadDir
	if dir == "" {
		dir = os.TempDir()
	}
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return "", "", errors.WithMessage(err, "create upload dir")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	dst := filepath.Join(dir, uuid.NewString()+ext)
	if err = c.SaveUploadedFile(fh, dst); err != nil {
		return "", "", errors.WithMessagef(err, "save upload %s", field)
	}
	return dst, fh.Header.Get("Content-Type"), nil
}

// Discard 请求失败时清理已落盘的临时文件
func Discard(paths ...string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}
