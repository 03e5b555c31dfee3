package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/kotoba-app/kotoba/pkg/common"
	"github.com/kotoba-app/kotoba/pkg/storage"
)

// Ping is a trivial liveness endpoint.
func Ping(ctx context.Context, c *app.RequestContext) {
	c.JSON(consts.StatusOK, map[string]string{"message": "pong"})
}

func writeBadRequest(c *app.RequestContext, err error) {
	c.JSON(consts.StatusBadRequest, common.CommonResponse{
		Code:  consts.StatusBadRequest,
		Msg:   err.Error(),
		Error: err.Error(),
	})
}

func writeNotFound(c *app.RequestContext, err error) {
	c.JSON(consts.StatusNotFound, common.CommonResponse{
		Code:  consts.StatusNotFound,
		Msg:   err.Error(),
		Error: err.Error(),
	})
}

func writeInternalError(c *app.RequestContext, err error) {
	c.JSON(consts.StatusInternalServerError, common.CommonResponse{
		Code:  consts.StatusInternalServerError,
		Msg:   "internal error",
		Error: err.Error(),
	})
}

// writeStorageError maps the storage error taxonomy onto HTTP statuses:
// invalid input and conflicts are 400, a session or object that cannot be
// found is 404, everything else is a backend failure carrying the original
// message.
func writeStorageError(c *app.RequestContext, err error) {
	switch storage.KindOf(err) {
	case storage.KindInvalidInput, storage.KindConflict:
		writeBadRequest(c, err)
	case storage.KindNotFound:
		writeNotFound(c, err)
	default:
		writeInternalError(c, err)
	}
}
