package mock

import (
	"context"
	"sync"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

var redisOnce sync.Once
var redisConn *redis.Client

// NewRedis starts (once) an embedded redis and returns a client bound to it.
func NewRedis() *redis.Client {
	redisOnce.Do(func() {
		mini, err := miniredis.Run()
		if err != nil {
			panic(err)
		}
		redisConn = redis.NewClient(&redis.Options{Addr: mini.Addr()})
	})
	return redisConn
}

func ClearRedis(client *redis.Client) error {
	return client.FlushAll(context.Background()).Err()
}
