package oss

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
)

// Media 上传后的访问地址与删除用的标识
type Media struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// MediaStore 媒体存储，接收本地文件，按PublicID删除
type MediaStore interface {
	Upload(ctx context.Context, localPath, folder, contentType string) (*Media, error)
	Delete(ctx context.Context, publicID string) error
}

// Store 进程使用的媒体存储，由InitMinio或InitLocal设置
var Store MediaStore

func objectName(folder, localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return strings.Trim(folder, "/") + "/" + uuid.NewString() + ext
}

// MinioStore 使用MinIO保存视频和封面
type MinioStore struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket error: %w", err)
	}
	if !exists {
		if err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: "us-east-1"}); err != nil {
			return fmt.Errorf("create bucket error: %w", err)
		}
	}
	return nil
}

func (s *MinioStore) Upload(ctx context.Context, localPath, folder, contentType string) (*Media, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	name := objectName(folder, localPath)
	if _, err := s.client.FPutObject(ctx, s.bucket, name, localPath, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return nil, errors.WithMessagef(err, "upload %s", name)
	}
	return &Media{
		URL:      fmt.Sprintf("%s/%s/%s", strings.TrimRight(s.publicURL, "/"), s.bucket, name),
		PublicID: name,
	}, nil
}

func (s *MinioStore) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	if err := s.client.RemoveObject(ctx, s.bucket, publicID, minio.RemoveObjectOptions{}); err != nil {
		return errors.WithMessagef(err, "remove %s", publicID)
	}
	return nil
}

// LocalStore 开发环境没有MinIO时把文件复制到本地目录
type LocalStore struct {
	dir       string
	urlPrefix string
}

func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *LocalStore) Upload(_ context.Context, localPath, folder, _ string) (*Media, error) {
	name := objectName(folder, localPath)
	dst := filepath.Join(s.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), os.ModePerm); err != nil {
		return nil, errors.WithMessage(err, "Failed to create folders")
	}
	if err := copyFile(localPath, dst); err != nil {
		return nil, err
	}
	return &Media{URL: s.urlPrefix + "/" + name, PublicID: name}, nil
}

func (s *LocalStore) Delete(_ context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(publicID)))
	if err != nil && !os.IsNotExist(err) {
		return errors.WithMessagef(err, "remove %s", publicID)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.WithMessage(err, "open source file")
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return errors.WithMessage(err, "create target file")
	}
	if _, err = io.Copy(out, in); err != nil {
		out.Close()
		return errors.WithMessage(err, "copy file")
	}
	return out.Close()
}

// DeleteQuietly 删除失败只记录日志，用于补偿清理
func DeleteQuietly(ctx context.Context, store MediaStore, publicIDs ...string) {
	if store == nil {
		return
	}
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			hlog.CtxWarnf(ctx, "Failed to delete media %s: %v", id, err)
		}
	}
}
