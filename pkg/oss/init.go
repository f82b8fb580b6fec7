package oss

import (
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func InitMinio(endpoint, accessKey, secretKey string, useSSL bool, bucket, publicURL string) error {
	hlog.Infof("Initializing MinIO client with endpoint: %s, accessKey: %s", endpoint, accessKey)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		hlog.Errorf("Failed to create MinIO client: %v", err)
		return err
	}
	if publicURL == "" {
		scheme := "http://"
		if useSSL {
			scheme = "https://"
		}
		publicURL = scheme + endpoint
	}
	Store = &MinioStore{client: client, bucket: bucket, publicURL: publicURL}
	hlog.Info("Connect Minio Success")
	return nil
}

func InitLocal(dir, urlPrefix string) {
	hlog.Warnf("MinIO not configured, storing media under %s", dir)
	Store = NewLocalStore(dir, urlPrefix)
}
