package api

import (
	"math"
	"strconv"

	"newsroom/internal/apperr"
	"newsroom/internal/metrics"
	"newsroom/internal/ratelimit"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// rateBucket binds a limiter to the message and code used when it rejects.
type rateBucket struct {
	name    string
	limiter *ratelimit.Limiter
	message string
	code    string
}

var (
	globalBucketInfo  = rateBucket{name: "global", message: "Too many requests, please try again later.", code: apperr.CodeRateLimited}
	authBucketInfo    = rateBucket{name: "auth", message: "Too many authentication attempts, please try again later.", code: apperr.CodeAuthRateLimited}
	commentBucketInfo = rateBucket{name: "comment", message: "Too many comments, please slow down.", code: apperr.CodeCommentRateLimited}
)

// RateLimit 按客户端 IP 限流。限流器为空时直接放行。
func (h *HTTPHandler) RateLimit(bucket *rateBucket) gin.HandlerFunc {
	return func(c *gin.Context) {
		if bucket.limiter == nil {
			c.Next()
			return
		}

		decision, err := bucket.limiter.Take(c.Request.Context(), c.ClientIP())
		if err != nil {
			logrus.WithError(err).WithField("bucket", bucket.name).Warn("rate limiter unavailable, allowing request")
		}
		if decision.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
			c.Header("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
		}
		if decision.Allowed {
			c.Next()
			return
		}

		retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		metrics.RateLimitedTotal.WithLabelValues(bucket.name).Inc()
		h.fail(c, apperr.RateLimited(bucket.message, bucket.code))
	}
}
