package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bfrpaulondev/fitness-api/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type pingFunc func(ctx context.Context) error

var errNoConfigurado = errors.New("no configurado")

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The SMTP breaker state is informative only and never fails the check.
func Health(db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) gin.HandlerFunc {
	pingDB := func(ctx context.Context) error {
		if db == nil {
			return errNoConfigurado
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
	pingRedis := func(ctx context.Context) error {
		if rdb == nil {
			return errNoConfigurado
		}
		return rdb.Ping(ctx).Err()
	}
	return health(pingDB, pingRedis, smtpCB)
}

func health(pingDB, pingRedis pingFunc, smtpCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		if pingDB(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if pingRedis(ctx) != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if smtpCB != nil {
			body["smtp"] = smtpCB.State().String()
		}
		c.JSON(status, body)
	}
}
