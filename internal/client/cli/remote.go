package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/moviekeeper/internal/client/client"
	"github.com/dmitrijs2005/moviekeeper/internal/client/config"
)

var newGRPCRemote = func(addr, token string) (client.Client, error) {
	return client.NewGRPCClient(addr, token)
}

var newS3Remote = func(ctx context.Context, c client.S3Config) (client.Client, error) {
	return client.NewS3Client(ctx, c)
}

// newRemote builds the document store client selected by cfg.RemoteMode.
func newRemote(ctx context.Context, cfg *config.Config) (client.Client, error) {
	switch cfg.RemoteMode {
	case config.RemoteGRPC:
		return newGRPCRemote(cfg.ServerEndpointAddr, cfg.AccessToken)
	case config.RemoteS3:
		return newS3Remote(ctx, client.S3Config{
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.BaseEndpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
			Bucket:       cfg.S3.Bucket,
			UsePathStyle: cfg.S3.UsePathStyle,
		})
	case config.RemoteMemory:
		return client.NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unknown remote mode %q", cfg.RemoteMode)
	}
}

// tokenSetter is implemented by remotes that authenticate with a bearer
// token.
type tokenSetter interface {
	SetAccessToken(token string)
}
