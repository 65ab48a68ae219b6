package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/jobscout/cache"
	"github.com/use-agent/jobscout/metrics"
	"github.com/use-agent/jobscout/models"
)

// JobExtractor is the part of extractor.Extractor the handler needs.
type JobExtractor interface {
	ExtractAs(ctx context.Context, rawURL, format string) *models.ScrapeResult
}

const (
	msgInvalidBody   = "Invalid JSON body"
	msgInvalidFormat = `description_format must be "text" or "markdown"`
	msgInternal      = "internal server error"
)

// ScrapeJob returns a handler for POST /scrape-job.
//
// Flow:
//  1. Bind and validate the body. Bad input is a 400 and never reaches the network.
//  2. Serve from cache when possible.
//  3. Extract. Extraction misses are still a 200 with success=false and
//     whatever fields were recovered.
//  4. A nil result means the extractor broke its contract: 500.
func ScrapeJob(x JobExtractor, cc *cache.Cache, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScrapeJobRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: bindErrorMessage(err)})
			return
		}
		req.Defaults()

		u, err := models.ParseJobURL(req.URL)
		if err != nil {
			var se *models.ScrapeError
			msg := models.MsgInvalidURLFormat
			if errors.As(err, &se) {
				msg = se.Message
			}
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msg})
			return
		}
		target := u.String()

		key := cache.Key(target, req.DescriptionFormat)
		if cc != nil {
			cached, hit := cc.Get(key)
			m.IncCacheLookup(hit)
			if hit {
				c.JSON(http.StatusOK, cached)
				return
			}
		}

		result := x.ExtractAs(c.Request.Context(), target, req.DescriptionFormat)
		if result == nil {
			slog.Error("extractor returned no result", "url", target)
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: msgInternal})
			return
		}

		cc.Set(key, result)
		c.JSON(http.StatusOK, result)
	}
}

// bindErrorMessage maps a binding failure to the message returned to the caller.
func bindErrorMessage(err error) string {
	if errors.Is(err, io.EOF) {
		return models.MsgURLRequired
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		if typeErr.Field == "url" {
			return models.MsgInvalidURLFormat
		}
		return msgInvalidBody
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return msgInvalidBody
	}
	return msgInvalidFormat
}
