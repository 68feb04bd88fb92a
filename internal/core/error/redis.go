package errx

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError with a consistent code and message.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return New(err, CodeRedis, RedisNotFoundMessage)
	}

	return New(err, CodeRedis, RedisErrorMessage)
}
