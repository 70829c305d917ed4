package config

import "google.golang.org/api/option"

type CloudStorage interface {
	GetBucket() string
	ClientOptions() []option.ClientOption
}

var _ CloudStorage = ProdCloudStorage{}

type ProdCloudStorage struct {
	SecretKey  string
	BucketName string
}

func (p ProdCloudStorage) GetBucket() string {
	return p.BucketName
}

func (p ProdCloudStorage) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithCredentialsJSON([]byte(p.SecretKey)),
	}
}

var _ CloudStorage = LocalCloudStorage{}

// LocalCloudStorage targets a fake GCS server, which doesn't check credentials
type LocalCloudStorage struct {
	HostEndpoint string
	BucketName   string
}

func (l LocalCloudStorage) GetBucket() string {
	return l.BucketName
}

func (l LocalCloudStorage) ClientOptions() []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(l.HostEndpoint),
		option.WithoutAuthentication(),
	}
}
