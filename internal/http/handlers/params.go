package handlers

import (
	"strconv"

	"github.com/geocoder89/meetuphub/internal/domain/page"
	"github.com/gin-gonic/gin"
)

// parseIDParam pulls a positive integer id out of the URL; anything else is
// rejected before the service is touched.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)

	if err != nil || id <= 0 {
		RespondError(ctx, 400, "invalid_id", "id must be a positive integer", gin.H{"id": raw})
		return 0, false
	}

	return id, true
}

// strQuery returns nil when the key is absent or blank, so unset filter
// fields stay unset.
func strQuery(ctx *gin.Context, key string) *string {
	v, ok := ctx.GetQuery(key)

	if !ok || v == "" {
		return nil
	}

	return &v
}

func intQuery(ctx *gin.Context, key string, fallback int) int {
	v, ok := ctx.GetQuery(key)

	if !ok || v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)

	if err != nil {
		return fallback
	}

	return n
}

func pageFromQuery(ctx *gin.Context) page.Request {
	return page.Request{
		Page: intQuery(ctx, "page", 0),
		Size: intQuery(ctx, "size", 0),
	}.Normalize()
}
